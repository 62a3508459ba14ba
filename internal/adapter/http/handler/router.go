package handler

import (
	"crux-escrow/internal/adapter/http/middleware"
	redisStore "crux-escrow/internal/adapter/storage/redis"
	"crux-escrow/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	BuyerSvc       ports.BuyerService
	SellerSvc      ports.SellerService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep — verifies PostgreSQL, Redis and the ledger node)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	escrowHandler := NewEscrowHandler(deps.BuyerSvc)
	incomingHandler := NewIncomingHandler(deps.SellerSvc)

	escrows := v1.Group("/escrows", jwtAuth)
	{
		escrows.POST("", rl("escrows"), escrowHandler.Create)
		escrows.GET("", rl("views"), escrowHandler.List)
		escrows.POST("/:sequence/cancel", rl("escrow_resolve"), escrowHandler.Cancel)
	}

	incoming := v1.Group("/incoming", jwtAuth)
	{
		incoming.GET("", rl("views"), incomingHandler.List)
		incoming.POST("/:sequence/release", rl("escrow_resolve"), incomingHandler.Release)
		incoming.POST("/:sequence/cancel", rl("escrow_resolve"), incomingHandler.Cancel)
	}

	wallet := v1.Group("/wallet", jwtAuth)
	{
		wallet.GET("/balance", rl("views"), escrowHandler.Balance)
	}

	v1.GET("/history", jwtAuth, rl("views"), escrowHandler.History)

	return r
}
