package handler

import (
	"net/http"

	"chesslounge/backend/internal/auth"
	"chesslounge/backend/internal/logging"
	"chesslounge/backend/internal/middleware"
	"chesslounge/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Handlers groups the route handlers.
type Handlers struct {
	Auth *AuthHandler
	Chat *ChatHandler
	User *UserHandler
}

// RouterConfig holds the cross-cutting pieces the router wires in.
type RouterConfig struct {
	Signer         *jwt.Signer
	AllowedOrigins []string
	RefreshSecret  string
	// ScheduledReset leaves /refresh unmounted because the reset runs in-process.
	ScheduledReset bool
	AppVersion     string
	// MessageLimiter throttles posting. Nil disables throttling.
	MessageLimiter *middleware.RateLimiter
	// Metrics serves /metrics when set.
	Metrics http.Handler
	Logger  *zap.Logger
}

// NewRouter mounts every route.
func NewRouter(h Handlers, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		logging.Middleware(cfg.Logger),
		middleware.CORS(cfg.AllowedOrigins),
	)

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", Health(cfg.AppVersion))
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	requireAuth := auth.RequireAuth(cfg.Signer)
	optionalAuth := auth.OptionalAuth(cfg.Signer)

	api := router.Group("/api")
	{
		// Auth routes
		api.GET("/login_google", h.Auth.RedirectGoogle)
		api.POST("/login_google/verify", h.Auth.VerifyGoogle)
		api.GET("/login_lichess", h.Auth.RedirectLichess)
		api.POST("/login_lichess/verify_auth", h.Auth.VerifyLichess)

		// User routes
		api.GET("/checkout", requireAuth, h.User.GetCheckout)
		api.POST("/checkout", requireAuth, h.User.PostCheckout)
		api.POST("/updateusername", requireAuth, h.User.UpdateUsername)
		if !cfg.ScheduledReset {
			api.GET("/refresh", auth.SharedSecret(cfg.RefreshSecret), h.User.Refresh)
		}

		// Chat routes
		chatRoutes := api.Group("/chat")
		{
			chatRoutes.GET("/getMessages", optionalAuth, h.Chat.GetMessages)
			send := []gin.HandlerFunc{requireAuth}
			if cfg.MessageLimiter != nil {
				send = append(send, cfg.MessageLimiter.Middleware())
			}
			send = append(send, h.Chat.SendMessage)
			chatRoutes.POST("/sendMessage", send...)
			chatRoutes.GET("/get_connection_token", optionalAuth, h.Chat.GetConnectionToken)
			chatRoutes.GET("/stream", h.Chat.Stream)
		}
	}

	return router
}
