package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dtroode/authkeeper/internal/api/http/cookie"
	"github.com/dtroode/authkeeper/internal/api/http/handler"
	"github.com/dtroode/authkeeper/internal/api/http/middleware"
	"github.com/dtroode/authkeeper/internal/logger"
	"github.com/dtroode/authkeeper/internal/model"
	"github.com/dtroode/authkeeper/internal/service"
)

// Router wires the authentication API onto a gin engine.
type Router struct {
	authService    *service.Auth
	cookies        *cookie.Session
	contextManager model.ContextManager
	allowOrigins   []string
	logger         *logger.Logger
}

// New creates new HTTP Router instance.
func New(
	authService *service.Auth,
	cookies *cookie.Session,
	contextManager model.ContextManager,
	allowOrigins []string,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		cookies:        cookies,
		contextManager: contextManager,
		allowOrigins:   allowOrigins,
		logger:         logger,
	}
}

// Register builds the engine with recovery, request logging and CORS, and
// mounts the auth routes under /v0/auth.
func (r *Router) Register() *gin.Engine {
	logging := middleware.NewLogging(r.logger)

	engine := gin.New()
	engine.Use(gin.Recovery(), logging.Handle())
	if len(r.allowOrigins) > 0 {
		engine.Use(cors.New(r.corsConfig()))
	}

	r.registerAuthRoutes(engine.Group("/v0/auth"))

	return engine
}

func (r *Router) corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = r.allowOrigins
	cfg.AllowCredentials = true
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	return cfg
}

func (r *Router) registerAuthRoutes(group *gin.RouterGroup) {
	authHandler := handler.NewAuth(r.authService, r.cookies, r.contextManager, r.logger)
	authenticate := middleware.NewAuthenticate(r.authService, r.contextManager, r.logger)

	group.POST("/signup", authHandler.Signup)
	group.POST("/login", authHandler.Login)
	group.POST("/logout", authHandler.Logout)
	group.GET("/getMe", authenticate.Handle(), authHandler.GetMe)
}
