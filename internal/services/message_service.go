package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hariombangali/rentora-backend/internal/db"
	"github.com/hariombangali/rentora-backend/internal/models"
	"github.com/hariombangali/rentora-backend/internal/utils"
)

const messagesCollection = "messages"

// Conversation summarizes a (property, counterpart) thread for the inbox.
type Conversation struct {
	PropertyID    utils.SixID    `json:"property"`
	CounterpartID utils.SixID    `json:"counterpart"`
	LastMessage   models.Message `json:"lastMessage"`
	UnreadCount   int            `json:"unreadCount"`
}

// IMessageService stores chat messages and derives the inbox view.
type IMessageService interface {
	Send(ctx context.Context, senderID, receiverID, propertyID utils.SixID, content string) (*models.Message, error)
	Thread(ctx context.Context, callerID, counterpartID, propertyID utils.SixID) ([]models.Message, error)
	Inbox(ctx context.Context, callerID utils.SixID) ([]Conversation, error)
	MarkRead(ctx context.Context, callerID, counterpartID, propertyID utils.SixID) error
}

type messageService struct {
	db *mongo.Database
}

// NewMessageService creates a message service on the given database.
func NewMessageService(database *mongo.Database) IMessageService {
	return &messageService{db: database}
}

func (s *messageService) collection() *mongo.Collection {
	return s.db.Collection(messagesCollection)
}

func (s *messageService) Send(ctx context.Context, senderID, receiverID, propertyID utils.SixID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message content is required", ErrValidation)
	}
	if senderID == receiverID {
		return nil, fmt.Errorf("%w: cannot message yourself", ErrValidation)
	}

	message := &models.Message{
		PropertyID: propertyID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	err := db.Try(func() error {
		message.GenID()
		_, insertErr := s.collection().InsertOne(ctx, message)
		return insertErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}
	return message, nil
}

// Thread returns the full exchange between the caller and a counterpart
// about one property, oldest first.
func (s *messageService) Thread(ctx context.Context, callerID, counterpartID, propertyID utils.SixID) ([]models.Message, error) {
	filter := bson.M{
		"property": propertyID,
		"$or": bson.A{
			bson.M{"sender": callerID, "receiver": counterpartID},
			bson.M{"sender": counterpartID, "receiver": callerID},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load thread: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return messages, nil
}

// Inbox groups the caller's messages into conversations keyed by
// (property, counterpart), newest activity first.
func (s *messageService) Inbox(ctx context.Context, callerID utils.SixID) ([]Conversation, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender": callerID},
		bson.M{"receiver": callerID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load inbox: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	type key struct {
		property    utils.SixID
		counterpart utils.SixID
	}
	grouped := make(map[key]*Conversation)
	for _, m := range messages {
		counterpart := m.SenderID
		if counterpart == callerID {
			counterpart = m.ReceiverID
		}
		k := key{property: m.PropertyID, counterpart: counterpart}
		conv, ok := grouped[k]
		if !ok {
			// Messages are sorted newest first, so the first hit is the
			// latest in the thread.
			conv = &Conversation{
				PropertyID:    m.PropertyID,
				CounterpartID: counterpart,
				LastMessage:   m,
			}
			grouped[k] = conv
		}
		if m.ReceiverID == callerID && !m.IsRead {
			conv.UnreadCount++
		}
	}

	conversations := make([]Conversation, 0, len(grouped))
	for _, conv := range grouped {
		conversations = append(conversations, *conv)
	}
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastMessage.CreatedAt.After(conversations[j].LastMessage.CreatedAt)
	})
	return conversations, nil
}

// MarkRead marks every message the counterpart sent the caller in the
// thread as read.
func (s *messageService) MarkRead(ctx context.Context, callerID, counterpartID, propertyID utils.SixID) error {
	filter := bson.M{
		"property": propertyID,
		"sender":   counterpartID,
		"receiver": callerID,
		"is_read":  false,
	}
	_, err := s.collection().UpdateMany(ctx, filter, bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark thread read: %w", err)
	}
	return nil
}
