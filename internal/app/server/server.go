// Package server exposes the scan engine as a small JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MOYARU/apiprobe/internal/checks/registry"
	"github.com/MOYARU/apiprobe/internal/checks/scanner"
	"github.com/MOYARU/apiprobe/internal/config"
	"github.com/MOYARU/apiprobe/internal/endpoint"
	"github.com/MOYARU/apiprobe/internal/engine"
	"github.com/MOYARU/apiprobe/internal/jsonutil"
	"github.com/MOYARU/apiprobe/internal/metrics"
	appver "github.com/MOYARU/apiprobe/internal/version"
)

const maxRequestBytes = 1 << 20

// ScanRequest is the body of POST /api/scan.
type ScanRequest struct {
	Endpoint endpoint.Spec `json:"endpoint"`
	Tests    []string      `json:"tests"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Server struct {
	policy   config.ScanPolicy
	client   *engine.Client
	recorder *metrics.Recorder
	logger   *slog.Logger
}

func New(policy config.ScanPolicy, recorder *metrics.Recorder, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		policy:   policy,
		client:   engine.NewClient(engine.OptionsFromPolicy(policy)),
		recorder: recorder,
		logger:   logger,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/probes", s.handleProbes)
	mux.HandleFunc("POST /api/scan", s.handleScan)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.recorder != nil {
		mux.Handle("GET /metrics", s.recorder.Handler())
	}
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// A scan is one baseline request plus the slowest probe.
		WriteTimeout: 2*s.policy.Timeout() + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleProbes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, registry.Infos())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": appver.Value})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := jsonutil.Decode(http.MaxBytesReader(w, r.Body, maxRequestBytes), &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if req.Endpoint.Method == "" {
		req.Endpoint.Method = endpoint.MethodGet
	} else if m, err := endpoint.ParseMethod(string(req.Endpoint.Method)); err == nil {
		req.Endpoint.Method = m
	}

	opts := []scanner.Option{
		scanner.WithLogger(s.logger),
		scanner.WithRequestBudget(s.policy.RequestBudget),
	}
	if s.recorder != nil {
		opts = append(opts, scanner.WithObserver(s.recorder))
	}
	scn, err := scanner.New(req.Endpoint, req.Tests, s.client, opts...)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	rep, err := scn.Run(r.Context())
	if err != nil {
		s.logger.Error("scan failed", slog.String("url", req.Endpoint.URL), slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = jsonutil.Encode(w, v)
}
