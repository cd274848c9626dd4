package api

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/flight-checker/internal/auth"
	availabilityHttp "github.com/nekogravitycat/flight-checker/internal/availability/http"
)

// Config holds everything the router needs.
type Config struct {
	IsProduction        bool
	ProdOrigins         string
	APIKeyHash          string
	KeyHasher           auth.KeyHasher
	AvailabilityHandler *availabilityHttp.Handler
	Logger              *zap.Logger
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - RequestLogger: Logs request information through zap.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(RequestLogger(cfg.Logger), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"http://localhost:8081"}
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		config.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", auth.HeaderAPIKey}
	r.Use(cors.New(config))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// apiKeyMiddleware: Validates the X-API-Key header against the configured hash.
	apiKeyMiddleware := auth.APIKeyRequired(cfg.KeyHasher, cfg.APIKeyHash)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		availabilityHttp.RegisterRoutes(v1, cfg.AvailabilityHandler, apiKeyMiddleware)
	}

	return r
}
