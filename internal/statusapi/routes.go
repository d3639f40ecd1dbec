package statusapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	slogGin "github.com/samber/slog-gin"

	"github.com/olist-lakehouse/lakestream/internal/streamer"
	"github.com/olist-lakehouse/lakestream/internal/version"
)

// StatusProvider exposes the live state of a synchronizer.
type StatusProvider interface {
	State() streamer.State
	Snapshot() streamer.Snapshot
}

func SetupRoutes(provider StatusProvider) http.Handler {
	r := gin.New()

	httpLogger := slog.Default().WithGroup("http")
	r.Use(slogGin.NewWithConfig(httpLogger, slogGin.Config{
		DefaultLevel:     slog.LevelDebug,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
	}))
	r.Use(gin.Recovery())

	h := &handler{provider: provider}
	r.GET("/", indexHandler)
	r.GET("/healthz", h.health)

	v1 := r.Group("/v1")
	{
		v1.GET("/status", h.status)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "not found",
		})
	})

	return r.Handler()
}

type handler struct {
	provider StatusProvider
}

// health is 200 only while the synchronizer is reconciling or watching.
func (h *handler) health(c *gin.Context) {
	state := h.provider.State()
	code := http.StatusOK
	status := "ok"
	if !state.Healthy() {
		code = http.StatusServiceUnavailable
		status = "unavailable"
	}
	c.PureJSON(code, gin.H{
		"status": status,
		"state":  state.String(),
	})
}

func (h *handler) status(c *gin.Context) {
	c.PureJSON(http.StatusOK, h.provider.Snapshot())
}

func indexHandler(c *gin.Context) {
	c.String(http.StatusOK, version.DetailedWithApp())
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}
