package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"rentbook/internal/infra/config"
	"rentbook/internal/infra/obs"
)

type Handlers struct {
	Bookings       *BookingHandler
	Payments       *PaymentHandler
	Reviews        *ReviewHandler
	Availability   *AvailabilityHandler
	AuthMiddleware gin.HandlerFunc
	Metrics        http.Handler
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	if h.Metrics != nil {
		router.GET("/metrics", gin.WrapH(h.Metrics))
	}

	api := router.Group("/api/v1")
	if b := h.Bookings; b != nil {
		api.POST("/bookings", b.Create)
		api.GET("/bookings/:id", b.Get)
		api.PATCH("/bookings/:id", b.Update)
		api.PUT("/bookings/:id/status", b.ChangeStatus)
		api.DELETE("/bookings/:id", b.Delete)
		api.GET("/bookings/:id/owner", b.IsOwner)
		api.GET("/me/bookings", b.ListMine)
		api.GET("/properties/:id/bookings", b.ListForProperty)
	}
	if p := h.Payments; p != nil {
		api.POST("/bookings/:id/payment", p.Make)
		api.GET("/bookings/:id/payment", p.Get)
		api.PATCH("/bookings/:id/payment", p.Update)
		api.PUT("/bookings/:id/payment/status", p.UpdateStatus)
		api.PUT("/bookings/:id/payment/method", p.UpdateMethod)
		api.DELETE("/bookings/:id/payment", p.Delete)
		api.GET("/payments/:id/owner", p.IsOwner)
		api.GET("/properties/:id/payments/total", p.TotalForProperty)
		api.GET("/me/payments/total", p.TotalMine)
	}
	if r := h.Reviews; r != nil {
		api.POST("/bookings/:id/review", r.Create)
		api.GET("/bookings/:id/review", r.Get)
		api.PATCH("/reviews/:id", r.Update)
		api.PUT("/reviews/:id/rating", r.UpdateRating)
		api.PUT("/reviews/:id/comment", r.UpdateComment)
		api.DELETE("/reviews/:id", r.Delete)
		api.GET("/reviews/:id/owner", r.IsOwner)
	}
	if a := h.Availability; a != nil {
		api.GET("/properties/:id/calendar", a.Calendar)
		api.GET("/properties/:id/availability", a.Check)
	}
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key", usernameHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Type", obs.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
