// Package api exposes the business store over HTTP.
//
// Routes:
//
//	GET    /api/          every business, as {Items, Count, ScannedCount}
//	GET    /api/?limit=N  a single scan page, with Cursor for the next one
//	POST   /api/          create a business from {name, status}
//	DELETE /api/:id       delete a business
//	GET    /healthz       liveness
//	GET    /metrics       prometheus metrics
package api

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/nisimpson/bizdir"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Response messages returned to clients.
const (
	MsgFetchFailed  = "Could not fetch data"
	MsgCreateFailed = "Could not add business"
	MsgDeleteFailed = "Could not delete business"
	MsgCreated      = "Successfully added business"
	MsgDeleted      = "Successfully deleted business"
	MsgBadRequest   = "Invalid request body"
)

// BusinessStore is the storage used by the handlers. *bizdir.Store satisfies it.
type BusinessStore interface {
	Scan(ctx context.Context) (bizdir.ScanResult, error)
	ScanPage(ctx context.Context, cursor string, limit int32) (bizdir.Page, error)
	Create(ctx context.Context, in bizdir.CreateInput) (bizdir.Business, error)
	Delete(ctx context.Context, busID string) error
}

var _ BusinessStore = (*bizdir.Store)(nil)

// Options configures the router.
type Options struct {
	Logger       *zap.Logger          // Defaults to a no-op logger
	AllowOrigins []string             // Empty allows every origin
	Registerer   prometheus.Registerer // Defaults to a fresh registry served on /metrics
	Gatherer     prometheus.Gatherer   // Must be set together with Registerer
}

// NewRouter returns a gin engine serving store.
func NewRouter(store BusinessStore, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	reg, gatherer := opts.Registerer, opts.Gatherer
	if reg == nil || gatherer == nil {
		r := prometheus.NewRegistry()
		reg, gatherer = r, r
	}
	metrics := NewMetrics(reg)

	r := gin.New()
	r.Use(
		RequestID(),
		AccessLog(logger),
		Recovery(logger),
		metrics.Middleware(),
		cors.New(corsConfig(opts.AllowOrigins)),
	)

	h := &handler{
		store:   store,
		logger:  logger,
		metrics: metrics,
	}

	api := r.Group("/api")
	{
		api.GET("", h.list)
		api.GET("/", h.list)
		api.POST("", h.create)
		api.POST("/", h.create)
		api.DELETE("/:id", h.delete)
	}

	r.GET("/healthz", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = append(cfg.AllowHeaders, RequestIDHeader)
	cfg.ExposeHeaders = []string{RequestIDHeader}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
