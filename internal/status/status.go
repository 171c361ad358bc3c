// Package status serves a read-only HTTP view of the running session.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/samdwyer/infection/internal/host"
	"github.com/samdwyer/infection/internal/rules"
)

// Source provides the data the API serves. Both methods are called from
// request goroutines and must be safe for concurrent use.
type Source interface {
	Snapshot() rules.Snapshot
	Recent(n int) []host.Entry
}

const defaultFeedLimit = 50

// Routes builds the API router.
func Routes(src Source) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", Healthz)
	r.Get("/round", Round(src))
	r.Get("/feed", Feed(src))
	return r
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Round returns the current round snapshot.
func Round(src Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, src.Snapshot())
	}
}

// Feed returns the newest announcements, oldest first. The n query parameter
// limits the count.
func Feed(src Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := defaultFeedLimit
		if v := r.URL.Query().Get("n"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed < 1 {
				http.Error(w, "n must be a positive integer", http.StatusBadRequest)
				return
			}
			n = parsed
		}
		entries := src.Recent(n)
		if entries == nil {
			entries = []host.Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Serve runs the API on addr until ctx is cancelled, then shuts down.
func Serve(ctx context.Context, addr string, src Source, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           Routes(src),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("status api listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info("status api stopped")
		return nil
	}
}
