package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/maloquacious/roster/internal/api"
	"github.com/maloquacious/roster/internal/config"
	"github.com/maloquacious/roster/internal/metrics"
	"github.com/maloquacious/roster/internal/store"
)

// runServe starts both the public (HTML + API) and admin (JSON) servers with graceful shutdown.
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	// the store is initialized exactly once per process, here
	st, err := openStore(cfg, true)
	if err != nil {
		return err
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	publicSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newPublicRouter(cfg, st, m, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Bind admin to 127.0.0.1 only (loopback enforcement)
	adminListener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", cfg.AdminPort))
	if err != nil {
		return fmt.Errorf("admin listener bind failed (loopback only): %w", err)
	}
	adminSrv := &http.Server{
		Handler:           newAdminRouter(st, reg, cancel, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Optional run timer
	if exitAfter > 0 {
		log.Info("exit-after timer set", "duration", exitAfter)
		timer := time.AfterFunc(exitAfter, cancel)
		defer timer.Stop()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("public server listening", "addr", publicSrv.Addr)
		if err := publicSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("public server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("admin server listening (JSON-only)", "addr", adminListener.Addr().String())
		if err := adminSrv.Serve(adminListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("admin server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return errors.Join(publicSrv.Shutdown(shutdownCtx), adminSrv.Shutdown(shutdownCtx))
	})

	err = g.Wait()
	if err != nil {
		log.Error("server error", "error", err)
	}
	log.Info("shutdown complete")
	return err
}

// newPublicRouter serves the static page, probes and the people API.
func newPublicRouter(cfg config.Config, st store.Store, m *metrics.Metrics, log *slog.Logger) http.Handler {
	h := api.New(st, m, log)
	return api.NewRouter(h, log, func(r chi.Router) {
		r.Get("/live", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
			state, err := st.CheckState()
			if err != nil || state != store.StateReady {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(strings.ToUpper(state.String())))
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("READY"))
		})

		// index.html and its assets from the public directory
		r.Handle("/*", http.FileServer(http.Dir(cfg.PublicDir)))
	})
}

// newAdminRouter serves status, shutdown and metrics on the loopback listener.
func newAdminRouter(st store.Store, reg *prometheus.Registry, shutdown context.CancelFunc, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(api.RequestID)
	r.Use(api.AccessLog(log))

	r.Group(func(r chi.Router) {
		r.Use(jsonOnly)

		r.Get("/admin/status", func(w http.ResponseWriter, r *http.Request) {
			now := time.Now().UTC().Format(time.RFC3339)
			resp := map[string]any{
				"version":       version.String(),
				"schemaVersion": schemaVersion,
				"buildDate":     buildDate,
				"time":          now,
				"mode":          "running",
			}
			if state, err := st.CheckState(); err == nil {
				resp["store"] = state.String()
			}
			if count, err := st.Count(r.Context()); err == nil {
				resp["people"] = count
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		})

		r.Post("/admin/shutdown", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "shutting down"})
			log.Info("shutdown requested", "request_id", api.RequestIDFrom(r.Context()))
			// let the response flush before the servers stop
			time.AfterFunc(200*time.Millisecond, shutdown)
		})
	})

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return r
}

// jsonOnly enforces JSON-only contract for admin routes.
func jsonOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Require Accept: application/json (at least for admin)
		accept := r.Header.Get("Accept")
		if !strings.Contains(accept, "application/json") && accept != "" && accept != "*/*" {
			writeJSONError(w, http.StatusNotAcceptable, "not_acceptable", "Accept must include application/json")
			return
		}
		if r.Method != http.MethodGet && r.ContentLength > 0 && !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "Content-Type must be application/json")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSONError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": msg,
	})
}
