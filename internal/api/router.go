package api

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hariombangali/rentora-backend/internal/api/handlers"
	"github.com/hariombangali/rentora-backend/internal/api/middleware"
	"github.com/hariombangali/rentora-backend/internal/cache"
	"github.com/hariombangali/rentora-backend/internal/config"
	"github.com/hariombangali/rentora-backend/internal/services"
	"github.com/hariombangali/rentora-backend/internal/storage"
	"github.com/hariombangali/rentora-backend/internal/tasks"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, taskClient tasks.IClient) *gin.Engine {
	// Initialize services needed by API handlers.
	userService := services.NewUserService(db)
	propertyService := services.NewPropertyService(db, userService)
	bookingRepo := services.NewBookingRepository(db)
	slotCalendar := services.NewSlotCalendar(bookingRepo, cfg.VisitSlotCapacity)
	overlapChecker := services.NewOverlapChecker(bookingRepo)

	var notifier services.IBookingNotifier
	if taskClient != nil {
		notifier = tasks.NewNotifier(taskClient)
	}
	bookingService := services.NewBookingService(bookingRepo, propertyService, slotCalendar, overlapChecker, notifier)
	contactService := services.NewContactService(bookingRepo, userService, propertyService, cfg.FreeMonthlyReveals)
	wishlistService := services.NewWishlistService(db, propertyService)
	messageService := services.NewMessageService(db)
	homeService := services.NewHomeService(db, propertyService)
	otpStore := cache.NewOTPStore(rdb, cfg.OTPTTL)

	var s3StorageService storage.IS3Storage
	if cfg.AwsS3Bucket != "" {
		svc, err := storage.NewS3Storage(cfg)
		if err != nil {
			log.Fatalf("CRITICAL: Failed to initialize S3 storage for API: %v", err)
		}
		s3StorageService = svc
	} else if os.Getenv("GIN_MODE") != "test" {
		log.Println("AWS_S3_BUCKET not set, image upload endpoints disabled.")
	}

	r := gin.Default()

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)

	r.Use(middleware.CORSMiddleware(cfg.ClientURL))
	r.Use(rateLimiter.Limit())

	// Initialize handlers
	bookingHandler := handlers.NewRestBookingHandler(bookingService, slotCalendar)
	contactHandler := handlers.NewRestContactHandler(contactService)
	authHandler := handlers.NewRestAuthHandler(userService, otpStore, cfg)
	propertyHandler := handlers.NewRestPropertyHandler(propertyService, s3StorageService, taskClient)
	adminHandler := handlers.NewRestAdminHandler(propertyService, userService, homeService)
	wishlistHandler := handlers.NewRestWishlistHandler(wishlistService)
	messageHandler := handlers.NewRestMessageHandler(messageService)
	homeHandler := handlers.NewRestHomeHandler(homeService)

	v1 := r.Group("/v1")
	{
		// Public routes
		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})
		v1.GET("/home", homeHandler.Home)
		v1.GET("/properties", propertyHandler.Search)
		v1.GET("/bookings/availability", bookingHandler.Availability)
		v1.GET("/visits/availability", bookingHandler.Availability)
		v1.GET("/bookings/check-dates/:propertyId", bookingHandler.CheckDates)

		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/login", authHandler.Login)
		v1.GET("/auth/exists", authHandler.EmailExists)
		v1.POST("/auth/otp/request", authHandler.RequestOTP)
		v1.POST("/auth/otp/verify", authHandler.VerifyOTP)

		// Authenticated routes
		authRequired := v1.Group("/")
		authRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret))
		{
			authRequired.GET("/auth/me", authHandler.Me)
			authRequired.POST("/auth/upgrade-role", authHandler.UpgradeRole)

			authRequired.POST("/bookings", bookingHandler.CreateBooking)
			authRequired.POST("/leads", bookingHandler.CreateLead)
			authRequired.POST("/visits", bookingHandler.CreateVisit)
			authRequired.GET("/bookings/my", bookingHandler.MyBookings)
			authRequired.GET("/bookings/owner", bookingHandler.OwnerBookings)
			authRequired.GET("/bookings/:id", bookingHandler.GetBooking)
			authRequired.PATCH("/bookings/:id/approve", bookingHandler.ApproveBooking)
			authRequired.PATCH("/bookings/:id/reject", bookingHandler.RejectBooking)
			authRequired.PATCH("/bookings/:id/reschedule", bookingHandler.RescheduleBooking)
			authRequired.PATCH("/bookings/:id/cancel", bookingHandler.CancelBooking)

			authRequired.GET("/contacts/quota", contactHandler.Quota)
			authRequired.POST("/contacts/reveal-phone", contactHandler.RevealPhone)

			authRequired.POST("/properties", propertyHandler.Create)
			authRequired.GET("/properties/mine", propertyHandler.Mine)
			authRequired.PUT("/properties/:id", propertyHandler.Update)
			authRequired.POST("/properties/:id/upload-url", propertyHandler.UploadURL)
			authRequired.POST("/properties/:id/images", propertyHandler.ConfirmImage)

			authRequired.GET("/wishlist", wishlistHandler.List)
			authRequired.POST("/wishlist/:id", wishlistHandler.Add)
			authRequired.DELETE("/wishlist/:id", wishlistHandler.Remove)

			authRequired.POST("/messages", messageHandler.Send)
			authRequired.GET("/messages", messageHandler.Inbox)
			authRequired.GET("/messages/:propertyId/:userId", messageHandler.Thread)

			authRequired.POST("/home/testimonials", homeHandler.SubmitTestimonial)
		}

		// Property by ID stays after the more specific routes above.
		v1.GET("/properties/:id", propertyHandler.Get)

		// Admin routes
		adminRequired := v1.Group("/admin")
		adminRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret), middleware.AdminMiddleware())
		{
			adminRequired.GET("/properties/pending", adminHandler.PendingProperties)
			adminRequired.PATCH("/properties/:id/moderate", adminHandler.ModerateProperty)
			adminRequired.GET("/owners/pending", adminHandler.PendingOwners)
			adminRequired.PATCH("/owners/:id/verify", adminHandler.VerifyOwner)
			adminRequired.PATCH("/testimonials/:id/moderate", adminHandler.ModerateTestimonial)
		}
	}

	return r
}
