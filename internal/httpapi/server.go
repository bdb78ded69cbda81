// Package httpapi serves donor reports over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/huangsam/donorlens/internal/contract"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds the size of an uploaded CSV.
const maxBodyBytes = 32 << 20

const shutdownTimeout = 10 * time.Second

// NewRouter builds the chi router for the report API.
// When baseCfg names an input file, GET on the report routes serves that file.
func NewRouter(baseCfg *contract.Config, mgr contract.StoreManager, logger zerolog.Logger) http.Handler {
	h := &handler{baseCfg: baseCfg, mgr: mgr, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, requestLogger(logger))

	r.Get("/healthz", h.healthz)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/report", h.postReport)
		r.Post("/queue", h.postQueue)
		r.Get("/report", h.getReport)
		r.Get("/queue", h.getQueue)
	})
	return r
}

// Serve runs the HTTP server until ctx is canceled, then shuts it down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
