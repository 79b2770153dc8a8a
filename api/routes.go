package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/NazarSenchuk/receipt-processor/api/handlers"
	"github.com/NazarSenchuk/receipt-processor/api/middleware"
	"github.com/NazarSenchuk/receipt-processor/internal/repository"
	"github.com/NazarSenchuk/receipt-processor/internal/tracing"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(ctx context.Context, r *gin.Engine, repos *repository.Repositories) {
	if repos == nil {
		panic("Repositories cannot be nil")
	}

	// Add recovery middlewares
	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	// CORS applies to every route, preflights included
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", handlers.HealthCheck)

	v1 := r.Group("/v1")
	v1.Use(middleware.IdentityClaimsMiddleware())
	{
		v1.GET("/receipts", handlers.ListReceipts(repos.ReceiptRepository))
	}
}
