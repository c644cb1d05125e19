package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hibiken/asynq"
	"github.com/nfnt/resize"
	"github.com/redis/go-redis/v9"

	"github.com/hariombangali/rentora-backend/internal/config"
	"github.com/hariombangali/rentora-backend/internal/email"
	"github.com/hariombangali/rentora-backend/internal/models"
	"github.com/hariombangali/rentora-backend/internal/services"
	"github.com/hariombangali/rentora-backend/internal/utils"
)

// Task types.
const (
	TypeBookingNotify = "booking:notify"
	TypeImageProcess  = "image:process"
)

// IClient is the enqueue-side surface of asynq used by the API process.
type IClient interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// NewClient creates an asynq client on the same Redis the cache uses.
func NewClient(rdb *redis.Client) *asynq.Client {
	clientOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	return asynq.NewClient(clientOpt)
}

// BookingNotifyPayload carries a booking event to the background worker.
type BookingNotifyPayload struct {
	BookingID string `json:"booking_id"`
	Event     string `json:"event"`
}

// ImageTaskPayload carries an uploaded image key for normalization.
type ImageTaskPayload struct {
	S3Key      string `json:"s3_key"`
	PropertyID string `json:"property_id"`
}

// Notifier adapts the task client to the booking service's notifier
// interface.
type Notifier struct {
	client IClient
}

// NewNotifier creates a booking notifier that enqueues notify tasks.
func NewNotifier(client IClient) *Notifier {
	return &Notifier{client: client}
}

// NotifyBookingEvent enqueues a booking notification task.
func (n *Notifier) NotifyBookingEvent(bookingID utils.SixID, event string) error {
	payload, err := json.Marshal(BookingNotifyPayload{
		BookingID: bookingID.String(),
		Event:     event,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal booking notify payload: %w", err)
	}
	_, err = n.client.Enqueue(asynq.NewTask(TypeBookingNotify, payload), asynq.Queue("default"))
	if err != nil {
		return fmt.Errorf("failed to enqueue booking notify task: %w", err)
	}
	return nil
}

// EnqueueImageProcess queues normalization of a freshly uploaded image.
func EnqueueImageProcess(client IClient, s3Key string, propertyID utils.SixID) error {
	payload, err := json.Marshal(ImageTaskPayload{
		S3Key:      s3Key,
		PropertyID: propertyID.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal image task payload: %w", err)
	}
	_, err = client.Enqueue(asynq.NewTask(TypeImageProcess, payload), asynq.Queue("images"))
	if err != nil {
		return fmt.Errorf("failed to enqueue image task: %w", err)
	}
	return nil
}

// TaskProcessor handles the processing of tasks. It holds dependencies
// needed by task handlers.
type TaskProcessor struct {
	cfg         *config.Config
	emailSender email.Sender
	bookings    services.IBookingRepository
	users       services.IUserService
	props       services.IPropertyService
	s3Client    *s3.Client
}

func NewTaskProcessor(
	cfg *config.Config,
	emailSender email.Sender,
	bookings services.IBookingRepository,
	users services.IUserService,
	props services.IPropertyService,
	s3Client *s3.Client,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:         cfg,
		emailSender: emailSender,
		bookings:    bookings,
		users:       users,
		props:       props,
		s3Client:    s3Client,
	}
}

// SetupServer configures and starts an Asynq server instance. Returns
// nil in API-only mode.
func SetupServer(rdb *redis.Client, processor *TaskProcessor, isBgWorker bool) *asynq.Server {
	if !isBgWorker {
		log.Println("Running in API mode, no task server started.")
		return nil
	}

	serverOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
				"images":   5,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBookingNotify, processor.HandleBookingNotifyTask)
	mux.HandleFunc(TypeImageProcess, processor.HandleImageProcessTask)
	log.Println("Registered background task handlers.")

	if err := srv.Start(mux); err != nil {
		log.Fatalf("Could not start Asynq server: %v", err)
	}

	return srv
}

// eventRecipient decides which party of the booking the event concerns.
// Requester actions notify the owner; owner actions notify the requester.
func eventRecipient(booking *models.Booking, event string) utils.SixID {
	switch event {
	case "created", "lead_updated":
		return booking.OwnerID
	case "approved", "rejected", "rescheduled":
		return booking.UserID
	default:
		if !booking.IsReadByOwner {
			return booking.OwnerID
		}
		return booking.UserID
	}
}

var eventSubjects = map[string]string{
	"created":      "New booking request",
	"lead_updated": "Enquiry updated",
	"approved":     "Your booking was approved",
	"rejected":     "Your booking was declined",
	"rescheduled":  "Your visit was rescheduled",
	"cancelled":    "A booking was cancelled",
}

// HandleBookingNotifyTask emails the affected party about a booking
// event.
func (p *TaskProcessor) HandleBookingNotifyTask(ctx context.Context, t *asynq.Task) error {
	var payload BookingNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal booking notify payload: %v: %w", err, asynq.SkipRetry)
	}

	bookingID, err := utils.ParseSixID(payload.BookingID)
	if err != nil {
		return fmt.Errorf("invalid booking ID in payload: %w", asynq.SkipRetry)
	}

	booking, err := p.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return fmt.Errorf("booking not found: %w", asynq.SkipRetry)
		}
		return err
	}

	recipient, err := p.users.FindByID(ctx, eventRecipient(booking, payload.Event))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return fmt.Errorf("recipient not found: %w", asynq.SkipRetry)
		}
		return err
	}

	subject := eventSubjects[payload.Event]
	if subject == "" {
		subject = "Booking update"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("To: %s\r\n", recipient.Email))
	sb.WriteString(fmt.Sprintf("From: %s\r\n", p.cfg.SmtpFromAddress))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(fmt.Sprintf("Hi %s,\r\n\r\nBooking %s is now %s.\r\n", recipient.Name, booking.ID, booking.Status))

	if err := p.emailSender.Send(ctx, []string{recipient.Email}, subject, []byte(sb.String())); err != nil {
		log.Printf("Booking notification email failed for %s: %v", booking.ID, err)
		return err
	}
	return nil
}

// HandleImageProcessTask normalizes an uploaded property image: enforces
// size and dimension limits, resizes when needed, then attaches the key
// to the listing.
func (p *TaskProcessor) HandleImageProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ImageTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal image task payload: %v: %w", err, asynq.SkipRetry)
	}

	propertyID, err := utils.ParseSixID(payload.PropertyID)
	if err != nil {
		log.Printf("Invalid PropertyID in image task payload: %s", payload.PropertyID)
		return fmt.Errorf("invalid property ID in payload: %w", asynq.SkipRetry)
	}

	log.Printf("Processing image task: S3Key=%s, PropertyID=%s", payload.S3Key, payload.PropertyID)

	getObjectOutput, err := p.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.cfg.AwsS3Bucket),
		Key:    aws.String(payload.S3Key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			log.Printf("S3 object %s not found, likely upload failed or key incorrect.", payload.S3Key)
			return fmt.Errorf("s3 object not found: %w", asynq.SkipRetry)
		}
		return fmt.Errorf("failed to download image from S3: %w", err)
	}
	defer getObjectOutput.Body.Close()

	imgData, err := io.ReadAll(getObjectOutput.Body)
	if err != nil {
		return fmt.Errorf("failed to read image data: %w", err)
	}

	maxSizeBytes := int64(p.cfg.ImageMaxSizeMB) * 1024 * 1024
	if int64(len(imgData)) > maxSizeBytes {
		log.Printf("Image %s exceeds max size (%d > %d bytes). Skipping.", payload.S3Key, len(imgData), maxSizeBytes)
		return fmt.Errorf("image exceeds max size: %w", asynq.SkipRetry)
	}

	img, format, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		return fmt.Errorf("unsupported image format or corrupt image: %w", asynq.SkipRetry)
	}
	log.Printf("Decoded image %s, format: %s, size: %dx%d", payload.S3Key, format, img.Bounds().Dx(), img.Bounds().Dy())

	maxWidth := uint(p.cfg.ImageMaxDimension)
	maxHeight := uint(p.cfg.ImageMaxDimension)
	needsResize := uint(img.Bounds().Dx()) > maxWidth || uint(img.Bounds().Dy()) > maxHeight

	processedImageData := imgData
	contentType := aws.ToString(getObjectOutput.ContentType)

	if needsResize {
		resizedImg := resize.Thumbnail(maxWidth, maxHeight, img, resize.Lanczos3)
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, resizedImg, &jpeg.Options{Quality: 85}); err != nil {
			return fmt.Errorf("failed to re-encode resized image: %w", err)
		}
		processedImageData = buf.Bytes()
		contentType = "image/jpeg"
		log.Printf("Resized image %s to %dx%d", payload.S3Key, resizedImg.Bounds().Dx(), resizedImg.Bounds().Dy())

		if int64(len(processedImageData)) > maxSizeBytes {
			return fmt.Errorf("resized image still exceeds max size: %w", asynq.SkipRetry)
		}

		_, err = p.s3Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(p.cfg.AwsS3Bucket),
			Key:         aws.String(payload.S3Key),
			Body:        bytes.NewReader(processedImageData),
			ContentType: aws.String(contentType),
		})
		if err != nil {
			return fmt.Errorf("failed to upload processed image: %w", err)
		}
	}

	property, err := p.props.FindByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return fmt.Errorf("property not found: %w", asynq.SkipRetry)
		}
		return err
	}
	if _, err := p.props.AttachImages(ctx, property.UserID, propertyID, []string{payload.S3Key}); err != nil {
		return fmt.Errorf("failed to attach processed image to property: %w", err)
	}

	log.Printf("Image task processed successfully: Key=%s, PropertyID=%s", payload.S3Key, payload.PropertyID)
	return nil
}
