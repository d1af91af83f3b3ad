package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"peoplework/internal/domain"
	"peoplework/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	authH *AuthHandler,
	userH *UserHandler,
	apptH *AppointmentHandler,
	reviewH *ReviewHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	authRequired := JWTAuthMiddleware(jwtSvc)

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/send-otp", authH.SendOTP)
	auth.POST("/verify-otp", authH.VerifyOTP)
	auth.POST("/login", authH.Login)
	auth.POST("/forgot", authH.ForgotPassword)
	auth.POST("/reset", authH.ResetPassword)

	users := api.Group("/users")
	users.GET("", userH.List)
	users.GET("/profile", authRequired, userH.GetProfile)
	users.PUT("/profile", authRequired, userH.UpdateProfile)
	users.GET("/:id", authRequired, RequireRole(domain.RoleAdmin), userH.GetByID)
	users.PUT("/:id", authRequired, RequireRole(domain.RoleAdmin), userH.Update)
	users.DELETE("/:id", authRequired, RequireRole(domain.RoleAdmin), userH.Delete)

	appointments := api.Group("/appointments", authRequired)
	appointments.POST("", apptH.Create)
	appointments.GET("", apptH.List)
	appointments.GET("/:id", apptH.GetByID)
	appointments.PUT("/:id", apptH.Update)
	appointments.DELETE("/:id", apptH.Delete)

	reviews := api.Group("/reviews")
	reviews.POST("", authRequired, RequireRole(domain.RoleCustomer), reviewH.Create)
	reviews.GET("", reviewH.List)
	reviews.GET("/:id", reviewH.GetByID)
	reviews.PATCH("/:id", authRequired, reviewH.Update)
	reviews.DELETE("/:id", authRequired, reviewH.Delete)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
