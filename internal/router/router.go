package router

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/wegig/backend/internal/cleanup"
	"github.com/wegig/backend/internal/handlers"
	"github.com/wegig/backend/internal/middleware"
	"github.com/wegig/backend/internal/notifications"
	"github.com/wegig/backend/internal/push"
	"github.com/wegig/backend/internal/ratelimit"
	"github.com/wegig/backend/internal/repositories"
	"github.com/wegig/backend/pkg/firebase"
)

// SetupMiddleware configures global Echo middleware.
func SetupMiddleware(e *echo.Echo, logger *slog.Logger) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.RequestID())
	// Event delivery retries aggressively on errors; the bucket absorbs
	// replay storms without dropping normal trigger traffic.
	e.Use(middleware.NewTriggerLimiter(50, 100).Middleware())
	logger.Info("global middleware configured")
}

// Components holds the wired pipeline pieces that outlive a single request,
// so main can hand the sweep to the scheduler.
type Components struct {
	Sweep *cleanup.Sweep
}

// SetupRoutes wires repositories into the trigger pipelines and registers
// the trigger endpoints, all behind the shared-secret check.
func SetupRoutes(e *echo.Echo, app *firebase.App, triggerSecret string, logger *slog.Logger) *Components {
	e.GET("/health", handlers.HealthCheck)

	profileRepo := repositories.NewFirestoreProfileRepository(app.Firestore)
	postRepo := repositories.NewFirestorePostRepository(app.Firestore)
	interestRepo := repositories.NewFirestoreInterestRepository(app.Firestore)
	notificationRepo := repositories.NewFirestoreNotificationRepository(app.Firestore)
	conversationRepo := repositories.NewFirestoreConversationRepository(app.Firestore)
	counterRepo := repositories.NewFirestoreCounterRepository(app.Firestore)
	blobRepo := repositories.NewStorageBlobRepository(app.Bucket)

	limiter := ratelimit.New(counterRepo, logger)
	aggregator := notifications.New(notificationRepo, logger)
	dispatcher := push.NewDispatcher(app.Messaging, profileRepo, logger)
	cascade := cleanup.NewCascade(postRepo, blobRepo, notificationRepo, interestRepo, profileRepo, logger)
	sweep := cleanup.NewSweep(notificationRepo, logger)

	triggers := e.Group("/triggers", middleware.TriggerAuth(triggerSecret))

	postHandler := handlers.NewPostHandler(limiter, profileRepo, aggregator, dispatcher, logger)
	triggers.POST("/post-created", postHandler.HandleHTTP)

	interestHandler := handlers.NewInterestHandler(limiter, aggregator, dispatcher, logger)
	triggers.POST("/interest-created", interestHandler.HandleHTTP)

	messageHandler := handlers.NewMessageHandler(limiter, conversationRepo, aggregator, dispatcher, logger)
	triggers.POST("/message-created", messageHandler.HandleHTTP)

	profileHandler := handlers.NewProfileHandler(cascade, logger)
	triggers.POST("/profile-deleted", profileHandler.HandleHTTP)

	sweepHandler := handlers.NewSweepHandler(sweep, logger)
	triggers.POST("/expiry-sweep", sweepHandler.HandleHTTP)

	logger.Info("trigger routes configured")
	return &Components{Sweep: sweep}
}
