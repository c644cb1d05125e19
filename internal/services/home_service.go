package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hariombangali/rentora-backend/internal/db"
	"github.com/hariombangali/rentora-backend/internal/models"
	"github.com/hariombangali/rentora-backend/internal/utils"
)

const testimonialsCollection = "testimonials"

// HomeData is the aggregated payload for the landing page.
type HomeData struct {
	Featured     []models.Property    `json:"featured"`
	Cities       []CityCount          `json:"cities"`
	Testimonials []models.Testimonial `json:"testimonials"`
}

// CityCount pairs a city with its approved listing count.
type CityCount struct {
	City  string `json:"city"`
	Count int64  `json:"count"`
}

// IHomeService aggregates the public landing-page data.
type IHomeService interface {
	Home(ctx context.Context) (*HomeData, error)
	SubmitTestimonial(ctx context.Context, userID utils.SixID, name, text string, rating int) (*models.Testimonial, error)
	ModerateTestimonial(ctx context.Context, id utils.SixID, approve bool) error
}

type homeService struct {
	db    *mongo.Database
	props IPropertyService
}

// NewHomeService creates a home aggregation service.
func NewHomeService(database *mongo.Database, props IPropertyService) IHomeService {
	return &homeService{db: database, props: props}
}

// Home assembles featured listings, city counts and approved
// testimonials in one response.
func (s *homeService) Home(ctx context.Context) (*HomeData, error) {
	featured, err := s.props.Featured(ctx, 6)
	if err != nil {
		return nil, err
	}

	cities, err := s.cityCounts(ctx)
	if err != nil {
		return nil, err
	}

	testimonials, err := s.approvedTestimonials(ctx)
	if err != nil {
		return nil, err
	}

	return &HomeData{
		Featured:     featured,
		Cities:       cities,
		Testimonials: testimonials,
	}, nil
}

func (s *homeService) cityCounts(ctx context.Context) ([]CityCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"approved": true}}},
		{{Key: "$group", Value: bson.M{"_id": "$location.city", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
		{{Key: "$limit", Value: 8}},
	}
	cursor, err := s.db.Collection(propertiesCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate city counts: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		City  string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode city counts: %w", err)
	}

	cities := make([]CityCount, 0, len(rows))
	for _, row := range rows {
		cities = append(cities, CityCount{City: row.City, Count: row.Count})
	}
	return cities, nil
}

func (s *homeService) approvedTestimonials(ctx context.Context) ([]models.Testimonial, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(10)
	cursor, err := s.db.Collection(testimonialsCollection).Find(ctx, bson.M{"approved": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load testimonials: %w", err)
	}
	defer cursor.Close(ctx)

	var testimonials []models.Testimonial
	if err := cursor.All(ctx, &testimonials); err != nil {
		return nil, fmt.Errorf("failed to decode testimonials: %w", err)
	}
	return testimonials, nil
}

func (s *homeService) SubmitTestimonial(ctx context.Context, userID utils.SixID, name, text string, rating int) (*models.Testimonial, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: testimonial text is required", ErrValidation)
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	testimonial := &models.Testimonial{
		UserID:    userID,
		Name:      name,
		Text:      text,
		Rating:    rating,
		CreatedAt: time.Now(),
	}
	err := db.Try(func() error {
		testimonial.GenID()
		_, insertErr := s.db.Collection(testimonialsCollection).InsertOne(ctx, testimonial)
		return insertErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert testimonial: %w", err)
	}
	return testimonial, nil
}

func (s *homeService) ModerateTestimonial(ctx context.Context, id utils.SixID, approve bool) error {
	res, err := s.db.Collection(testimonialsCollection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"approved": approve}})
	if err != nil {
		return fmt.Errorf("failed to moderate testimonial %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
