// Package server exposes the pantry API over HTTP (gin) and a gRPC health endpoint.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/pantry-tracker/internal/auth"
	"github.com/joseph-ayodele/pantry-tracker/internal/categories"
	"github.com/joseph-ayodele/pantry-tracker/internal/export"
	"github.com/joseph-ayodele/pantry-tracker/internal/items"
	"github.com/joseph-ayodele/pantry-tracker/internal/kitchens"
	"github.com/joseph-ayodele/pantry-tracker/internal/pipeline/invoice"
	"github.com/joseph-ayodele/pantry-tracker/internal/preferences"
	"github.com/joseph-ayodele/pantry-tracker/internal/repository"
)

// Pinger reports database reachability.
type Pinger interface {
	HealthCheck(ctx context.Context, timeout time.Duration) error
}

// Deps are the services the HTTP handlers dispatch to.
type Deps struct {
	DB          Pinger
	Users       repository.UserRepository
	Verifier    *auth.Verifier
	Kitchens    *kitchens.Service
	Items       *items.Service
	Committer   *items.Committer
	Categories  *categories.Service
	Preferences *preferences.KitchenPreference
	Invoices    *invoice.Pipeline
	Export      *export.Service

	// MaxUploadBytes bounds an uploaded invoice document.
	MaxUploadBytes int64
}

type Server struct {
	deps   Deps
	logger *slog.Logger
	engine *gin.Engine
	http   *http.Server
}

func New(deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{deps: deps, logger: logger}
	s.engine = s.routes()
	s.http = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler with every route mounted.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	// documents plus multipart overhead
	r.MaxMultipartMemory = s.deps.MaxUploadBytes + 1<<20
	r.Use(s.recovery(), s.requestID(), s.requestLogger())

	r.GET("/healthz", s.healthz)

	api := r.Group("/api", s.authenticate())
	{
		api.GET("/me", s.me)

		k := api.Group("/kitchens")
		k.GET("", s.listKitchens)
		k.POST("", s.createKitchen)
		k.GET("/:id", s.getKitchen)
		k.PUT("/:id", s.updateKitchen)
		k.DELETE("/:id", s.deleteKitchen)
		k.POST("/:id/default", s.setDefaultKitchen)
		k.GET("/:id/stats", s.kitchenStats)
		k.GET("/:id/expiry", s.kitchenExpiry)
		k.POST("/:id/refresh-status", s.refreshKitchenStatus)
		k.GET("/:id/items", s.listKitchenItems)
		k.GET("/:id/export.xlsx", s.exportKitchen)

		it := api.Group("/items")
		it.POST("", s.createItem)
		it.GET("/:id", s.getItem)
		it.PUT("/:id", s.updateItem)
		it.DELETE("/:id", s.deleteItem)
		it.GET("/:id/history", s.itemHistory)

		api.GET("/categories", s.listCategories)
		api.POST("/categories", s.createCategory)
		api.POST("/categories/seed", s.seedCategories)

		api.POST("/invoices/upload", s.uploadInvoice)
		api.POST("/invoices/commit", s.commitInvoice)

		api.GET("/preferences/kitchen", s.currentKitchen)
		api.PUT("/preferences/kitchen", s.selectKitchen)
	}
	return r
}

// Serve accepts HTTP connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("http.listen", "addr", ln.Addr().String())
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
