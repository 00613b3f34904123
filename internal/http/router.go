// README: HTTP router registration (gin) for pricing and booking routes.
package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ridebook/internal/http/handlers"
	"ridebook/internal/http/middleware"
	"ridebook/internal/infra"
)

type RouterDeps struct {
	Pricing        handlers.PricingService
	Bookings       handlers.BookingService
	Verifier       infra.TokenVerifier
	Logger         *zap.Logger
	AllowedOrigins []string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.Logging(logger), middleware.Recovery(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	pricingHandler := handlers.NewPricingHandler(deps.Pricing)
	r.GET("/distance", pricingHandler.Distance)
	r.GET("/api/rates", pricingHandler.Rates)
	r.GET("/api/quote", pricingHandler.Quote)

	bookingHandler := handlers.NewBookingHandler(deps.Bookings)
	api := r.Group("/api", middleware.Auth(deps.Verifier))
	api.POST("/bookings/:id/pricing/estimate", bookingHandler.Estimate)
	api.GET("/bookings/:id/pricing", bookingHandler.GetPricing)
	api.PUT("/bookings/:id/pricing", middleware.RequireRole(middleware.RoleAdmin), bookingHandler.Confirm)

	return r
}
