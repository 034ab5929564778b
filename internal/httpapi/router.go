package httpapi

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/goliatone/go-game-config/handlers"
)

// Options configures the HTTP engine.
type Options struct {
	// Env selects the gin mode: "dev" runs in debug mode, anything else in
	// release mode.
	Env            string
	RequestTimeout time.Duration
	// StaticDir serves a single page app with index.html as the fallback
	// for unknown non-API paths.
	StaticDir string
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(set *handlers.Set, logger *zap.Logger, opts Options) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	if strings.EqualFold(opts.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(requestLogger(logger))
	engine.Use(timeoutMiddleware(opts.RequestTimeout))

	(&HealthAPI{Pinger: set.TestDB.Service}).Register(engine)
	(&ConfigurationAPI{Handlers: set, Logger: logger}).Register(engine)

	engine.NoRoute(spaFallback(opts.StaticDir))
	return engine
}

func spaFallback(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if dir == "" || c.Request.Method != http.MethodGet || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
			return
		}

		clean := filepath.Clean("/" + c.Request.URL.Path)
		candidate := filepath.Join(dir, clean)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			c.File(candidate)
			return
		}
		c.File(filepath.Join(dir, "index.html"))
	}
}
