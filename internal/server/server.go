package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"nodeAccess/internal/access"
	"nodeAccess/internal/metrics"
	"nodeAccess/internal/model"
	"nodeAccess/internal/webhook"
)

const maxBodyBytes = 1 << 20

// Requester runs one access request.
type Requester interface {
	Request(ctx context.Context, target model.PoolTarget) (access.Result, error)
}

// Recorder persists a request that reached the chain. reqErr is set when a
// step after the access transaction failed.
type Recorder func(ctx context.Context, res access.Result, reqErr error) error

// Server exposes the webhook endpoint, health and metrics.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	requester  Requester
	resolver   *webhook.Resolver
	record     Recorder
	logger     *zap.Logger

	// mu serializes invocations; they share one signing account.
	mu sync.Mutex
}

// New builds a Server listening on addr.
func New(addr string, requester Requester, resolver *webhook.Resolver, record Recorder, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if resolver == nil {
		resolver = webhook.NewResolver(webhook.DefaultPoolEventSignature)
	}

	mux := http.NewServeMux()
	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           instrument(mux),
			ReadHeaderTimeout: 15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		mux:       mux,
		requester: requester,
		resolver:  resolver,
		record:    record,
		logger:    logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc(routeHealthz, s.handleHealthz)
	s.mux.HandleFunc(routeWebhook, s.handleWebhook)
	s.mux.Handle(routeMetrics, promhttp.Handler())
}

// Handler returns the root handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server start", zap.String("addr", s.httpServer.Addr))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type webhookResponse struct {
	Status     string  `json:"status"`
	TxHash     string  `json:"tx_hash,omitempty"`
	NodeID     string  `json:"node_id,omitempty"`
	PoolID     *uint32 `json:"pool_id,omitempty"`
	SignTxHash string  `json:"sign_tx_hash,omitempty"`
	Error      string  `json:"error,omitempty"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, webhookResponse{Status: "error", Error: "body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, webhookResponse{Status: "error", Error: "read body"})
		return
	}

	target, err := s.resolver.Target(body)
	if err != nil {
		s.logger.Warn("invalid webhook payload", zap.Error(err))
		metrics.Requests.WithLabelValues("webhook", "invalid_payload").Inc()
		writeJSON(w, http.StatusBadRequest, webhookResponse{Status: "error", Error: err.Error()})
		return
	}

	trigger := "manual"
	if t, ok := target.(model.PoolFromPayload); ok {
		trigger = "webhook"
		s.logger.Info("called by webhook, pool id taken from payload", zap.Uint32("pool_id", t.PoolID))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A dropped connection must not abandon an invocation halfway through.
	ctx := context.WithoutCancel(r.Context())

	start := time.Now()
	res, err := s.requester.Request(ctx, target)
	metrics.RequestDuration.Observe(time.Since(start).Seconds())
	if res.AllowanceTx != nil {
		metrics.AllowanceTopUps.Inc()
	}
	if res.SignTx != nil {
		metrics.PoolSigns.Inc()
	}
	if err != nil {
		s.logger.Error("access request failed", zap.Error(err), zap.String("access_tx", res.AccessTx.Hex()))
		metrics.Requests.WithLabelValues(trigger, "failed").Inc()
		if !res.Submitted() {
			writeJSON(w, http.StatusBadGateway, webhookResponse{Status: "error", Error: err.Error()})
			return
		}
		s.recordResult(ctx, res, err)
		resp := resultResponse(res)
		resp.Status = "error"
		resp.Error = err.Error()
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	metrics.Requests.WithLabelValues(trigger, "ok").Inc()

	s.recordResult(ctx, res, nil)
	resp := resultResponse(res)
	resp.Status = "ok"
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) recordResult(ctx context.Context, res access.Result, reqErr error) {
	if s.record == nil {
		return
	}
	if err := s.record(ctx, res, reqErr); err != nil {
		s.logger.Error("record access request", zap.Error(err), zap.String("access_tx", res.AccessTx.Hex()))
	}
}

func resultResponse(res access.Result) webhookResponse {
	resp := webhookResponse{TxHash: res.AccessTx.Hex()}
	if res.Paid.NodeID != nil {
		resp.NodeID = res.Paid.NodeID.String()
	}
	if t, ok := res.Target.(model.PoolFromPayload); ok {
		id := t.PoolID
		resp.PoolID = &id
	}
	if res.SignTx != nil {
		resp.SignTxHash = res.SignTx.Hex()
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"status":"error","error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
