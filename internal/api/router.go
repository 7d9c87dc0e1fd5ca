package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tulipfi/options/internal/api/handler"
	"github.com/tulipfi/options/internal/api/middleware"
	"github.com/tulipfi/options/internal/config"
	"github.com/tulipfi/options/internal/repository"
	"github.com/tulipfi/options/internal/service"
	"github.com/tulipfi/options/internal/ws"
)

// RouterDeps bundles every dependency needed to build the router.
// Populated once in main() and passed to SetupRouter.
type RouterDeps struct {
	AuthSvc    *service.AuthService
	FactorySvc *service.FactoryService
	PoolSvc    *service.PoolService
	OptionSvc  *service.OptionService
	UserRepo   *repository.UserRepository
	LedgerRepo *repository.LedgerRepository
	EventRepo  *repository.EventRepository
	Hub        *ws.Hub
	Cfg        *config.Config
}

// SetupRouter creates and configures the main Gin engine with all routes,
// middleware, CORS, and rate limiting rules.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// ── CORS ─────────────────────────────────────────────────────────────────
	r.Use(corsMiddleware(deps.Cfg))

	// ── Health check ─────────────────────────────────────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── Handlers ─────────────────────────────────────────────────────────────
	userH := handler.NewUserHandler(deps.AuthSvc, deps.UserRepo, deps.LedgerRepo)
	marketH := handler.NewMarketHandler(deps.FactorySvc, deps.EventRepo, deps.Hub)
	poolH := handler.NewPoolHandler(deps.PoolSvc)
	optionH := handler.NewOptionHandler(deps.OptionSvc)

	// ── JWT middleware (shared) ───────────────────────────────────────────────
	jwtMW := middleware.JWTMiddleware(deps.AuthSvc)

	// ── Rate limiters ─────────────────────────────────────────────────────────
	authRL := middleware.RateLimitMiddleware(10)      // 10 req/s per IP for auth endpoints
	tradeRL := middleware.UserRateLimitMiddleware(30) // 30 req/s per account for trading endpoints

	api := r.Group("/api")
	{
		// ── Auth (public, strict rate limit) ─────────────────────────────────
		auth := api.Group("/auth")
		auth.Use(authRL)
		{
			auth.POST("/register", userH.Register)
			auth.POST("/login", userH.Login)
			auth.POST("/refresh", userH.Refresh)
		}

		// ── Markets (public reads) ───────────────────────────────────────────
		markets := api.Group("/markets")
		{
			markets.GET("", marketH.ListMarkets)
			markets.GET("/pair", marketH.GetByPair)
			markets.GET("/:id", marketH.GetByID)
			markets.GET("/:id/summary", marketH.GetSummary)
			markets.GET("/:id/events", marketH.GetEvents)
			markets.GET("/:id/options", optionH.ListByMarket)
			markets.GET("/:id/options/:optionId", optionH.GetOption)
			markets.POST("/:id/options/estimate", optionH.Estimate)
		}

		// ── Event feed (public, for indexers) ────────────────────────────────
		api.GET("/events", marketH.EventFeed)

		// ── Pools (public reads) ─────────────────────────────────────────────
		pools := api.Group("/pools")
		{
			pools.GET("/:id", poolH.GetPool)
			pools.GET("/:id/holders", poolH.Holders)
		}

		// ── Authenticated routes ──────────────────────────────────────────────
		authed := api.Group("")
		authed.Use(jwtMW)
		{
			// Profile
			authed.GET("/me", userH.Me)
			authed.GET("/me/ledger", userH.MyLedger)
			authed.GET("/options/my", optionH.MyOptions)

			// Market creation and option lifecycle
			trading := authed.Group("")
			trading.Use(tradeRL)
			{
				trading.POST("/markets", marketH.CreateMarket)
				trading.POST("/markets/:id/options", optionH.CreateOption)
				trading.POST("/markets/:id/options/:optionId/exercise", optionH.Exercise)
				trading.POST("/markets/:id/options/:optionId/unlock", optionH.Unlock)
				trading.POST("/markets/:id/options/unlock", optionH.UnlockBatch)

				// Pool liquidity
				trading.POST("/pools/:id/deposit", poolH.Deposit)
				trading.POST("/pools/:id/withdraw", poolH.Withdraw)
				trading.GET("/pools/:id/shares", poolH.MyShares)
			}
		}
	}

	// ── WebSocket ─────────────────────────────────────────────────────────────
	if deps.Hub != nil {
		r.GET("/ws", func(c *gin.Context) {
			deps.Hub.ServeWs(c.Writer, c.Request)
		})
	}

	return r
}

// ── CORS helper ───────────────────────────────────────────────────────────────

// corsMiddleware returns a gin middleware that sets appropriate CORS headers.
// In development all origins are allowed; in production only the origins
// listed in ALLOWED_ORIGINS.
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	allowed := map[string]bool{}
	for _, o := range strings.Split(cfg.Server.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = true
		}
	}
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if !cfg.IsProd() {
			// Development: allow any origin
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origin != "" && allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
