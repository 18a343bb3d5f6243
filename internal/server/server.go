package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/chrisdamba/retailiq/internal/models"
)

// Reports is the read and restock surface the API serves.
// *reports.Reporter satisfies it.
type Reports interface {
	Revenue(ctx context.Context) (models.RevenueMetrics, error)
	Customers(ctx context.Context) (models.CustomerIntelligenceAnalytics, error)
	Customer(ctx context.Context, customerID string) (models.CustomerMetrics, error)
	Retention(ctx context.Context) (models.RetentionReport, error)
	Inventory(ctx context.Context) (models.InventoryAnalytics, error)
	Forecast(ctx context.Context, productID string, days int) (models.InventoryForecast, error)
	Restock(ctx context.Context, productID string, newStock int) (*models.InventoryItem, error)
}

type Server struct {
	Router *chi.Mux
	Port   int
	logger *zap.Logger
}

func New(port int, reports Reports, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Recoverer)

	h := &handlers{reports: reports, logger: logger}
	r.Get("/healthz", h.health)
	r.Get("/revenue", h.revenue)
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.customers)
		r.Get("/{id}", h.customer)
	})
	r.Get("/retention", h.retention)
	r.Route("/inventory", func(r chi.Router) {
		r.Get("/", h.inventory)
		r.Get("/{productID}/forecast", h.forecast)
		r.Post("/{productID}/stock", h.restock)
	})

	return &Server{Router: r, Port: port, logger: logger}
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.Int("port", s.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}
