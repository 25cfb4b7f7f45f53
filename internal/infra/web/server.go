// Package web exposes the polling HTTP surface: submit, status,
// cancel, result fetch, provider listing, health and metrics.
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"paper-assistant/internal/infra/adapters/ai"
	"paper-assistant/internal/usecase"
)

// providerLister is what the /providers endpoint needs from the
// corrector registry.
type providerLister interface {
	Providers() []ai.ProviderStatus
}

type Server struct {
	typoUC       *usecase.TypoCheckUseCase
	extractionUC *usecase.ExtractionUseCase
	providers    providerLister
	log          *zerolog.Logger

	http *http.Server
}

func NewServer(
	port int,
	typoUC *usecase.TypoCheckUseCase,
	extractionUC *usecase.ExtractionUseCase,
	providers providerLister,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "web").Logger()
	s := &Server{
		typoUC:       typoUC,
		extractionUC: extractionUC,
		providers:    providers,
		log:          &l,
	}
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/typo-jobs", func(r chi.Router) {
			r.Post("/", s.handleTypoSubmit)
			r.Get("/{id}", s.handleTypoStatus)
			r.Delete("/{id}", s.handleTypoCancel)
		})
		r.Get("/typo-results/{id}", s.handleTypoResult)

		r.Route("/extraction-jobs", func(r chi.Router) {
			r.Post("/", s.handleExtractionSubmit)
			r.Get("/{id}", s.handleExtractionStatus)
		})
		r.Get("/documents/{id}/page-count", s.handlePageCount)

		r.Get("/providers", s.handleProviders)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// Start serves until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server listening")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
