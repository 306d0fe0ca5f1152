package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/venturelink/venturelink/internal/app"
	iauth "github.com/venturelink/venturelink/internal/auth"
	"github.com/venturelink/venturelink/internal/handlers"
	"github.com/venturelink/venturelink/internal/middleware"
	"github.com/venturelink/venturelink/internal/realtime"
	"github.com/venturelink/venturelink/internal/services"
	"github.com/venturelink/venturelink/internal/storage"
	"github.com/venturelink/venturelink/pkg/mail"
)

// Dependencies collects the shared infrastructure the router wires into handlers.
type Dependencies struct {
	DB     *gorm.DB
	JWT    *iauth.JWTService
	Config *app.Config

	Sessions *iauth.SessionService
	Hub      *realtime.Hub
	Store    *storage.Store
	Mailer   mail.Mailer
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session service must be provided")
	}
	if deps.Config == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if deps.Hub == nil {
		return nil, fmt.Errorf("realtime hub must be provided")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("document store must be provided")
	}

	notificationSvc, err := services.NewNotificationService(deps.DB, deps.Hub)
	if err != nil {
		return nil, err
	}
	requestSvc, err := services.NewRequestService(deps.DB, notificationSvc)
	if err != nil {
		return nil, err
	}
	dealSvc, err := services.NewDealService(deps.DB, requestSvc, notificationSvc)
	if err != nil {
		return nil, err
	}
	meetingSvc, err := services.NewMeetingService(deps.DB, requestSvc, notificationSvc, deps.Mailer)
	if err != nil {
		return nil, err
	}
	messageSvc, err := services.NewMessageService(deps.DB, requestSvc, notificationSvc, deps.Hub)
	if err != nil {
		return nil, err
	}
	documentSvc, err := services.NewDocumentService(deps.DB, deps.Store, requestSvc, notificationSvc)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	// Basic rate limiting: 100 requests/minute per IP+path
	r.Use(middleware.RateLimit(100, time.Minute))

	r.NoRoute(middleware.NotFoundHandler)

	// Health endpoint (public)
	r.GET("/health", handlers.Health(deps.DB))

	if deps.Config.Monitoring.Prometheus.Enabled {
		endpoint := deps.Config.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler, err := handlers.NewAuthHandler(deps.DB, deps.Sessions)
	if err != nil {
		return nil, err
	}

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	// Websocket entry point authenticates inside the handler: browsers cannot
	// set an Authorization header on the upgrade request.
	realtimeHandler := handlers.NewRealtimeHandler(deps.Hub, deps.JWT,
		realtime.StreamNotifications, realtime.StreamMessages)
	r.GET("/ws", realtimeHandler.Stream)

	// Protected routes
	requireAuth := middleware.Auth(deps.JWT)

	api := r.Group("/api")
	api.Use(requireAuth)

	// Authenticated auth routes
	api.GET("/auth/me", authHandler.Me)
	api.POST("/auth/logout", authHandler.Logout)

	profileHandler, err := handlers.NewProfileHandler(deps.DB)
	if err != nil {
		return nil, err
	}

	registerProfileRoutes(api, profileHandler)
	registerRequestRoutes(api, handlers.NewRequestHandler(requestSvc))
	registerDealRoutes(api, handlers.NewDealHandler(dealSvc))
	registerMeetingRoutes(api, handlers.NewMeetingHandler(meetingSvc))
	registerMessageRoutes(api, handlers.NewMessageHandler(messageSvc))
	registerDocumentRoutes(api, handlers.NewDocumentHandler(documentSvc))
	registerNotificationRoutes(api, handlers.NewNotificationHandler(notificationSvc))

	return r, nil
}
