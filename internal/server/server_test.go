package server

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"nodeAccess/internal/access"
	"nodeAccess/internal/model"
	"nodeAccess/internal/webhook"
)

type fakeRequester struct {
	targets []model.PoolTarget
	result  *access.Result
	err     error
}

func (f *fakeRequester) Request(_ context.Context, target model.PoolTarget) (access.Result, error) {
	f.targets = append(f.targets, target)
	if f.result != nil {
		return *f.result, f.err
	}
	res := access.Result{
		AccessTx: common.HexToHash("0x01"),
		Paid:     model.PaidEvent{NodeID: big.NewInt(42)},
		Target:   target,
	}
	if _, ok := target.(model.PoolFromPayload); ok {
		h := common.HexToHash("0x02")
		res.SignTx = &h
	}
	return res, f.err
}

func newTestServer(req Requester, record Recorder) *Server {
	return New(":0", req, webhook.NewResolver(webhook.DefaultPoolEventSignature), record, zap.NewNop())
}

func TestWebhookWithoutBodyIsManual(t *testing.T) {
	req := &fakeRequester{}
	recorded := 0
	srv := newTestServer(req, func(_ context.Context, _ access.Result, reqErr error) error {
		if reqErr != nil {
			t.Fatalf("unexpected request error: %v", reqErr)
		}
		recorded++
		return nil
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if len(req.targets) != 1 {
		t.Fatalf("expected one request, got %d", len(req.targets))
	}
	if _, ok := req.targets[0].(model.ManualPool); !ok {
		t.Fatalf("expected ManualPool, got %T", req.targets[0])
	}
	if recorded != 1 {
		t.Fatalf("expected record call")
	}

	var resp webhookResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TxHash != common.HexToHash("0x01").Hex() || resp.NodeID != "42" || resp.SignTxHash != "" {
		t.Fatalf("response mismatch: %+v", resp)
	}
}

func TestWebhookRelaysPoolID(t *testing.T) {
	req := &fakeRequester{}
	srv := newTestServer(req, nil)

	body := `{"events":[{"type":"event","matchReasons":[{"type":"transaction"},{"type":"event","signature":"PoolReady(uint32,address)","params":{"poolId":"7"}}]}]}`
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	pool, ok := req.targets[0].(model.PoolFromPayload)
	if !ok || pool.PoolID != 7 {
		t.Fatalf("unexpected target: %#v", req.targets[0])
	}

	var resp webhookResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.PoolID == nil || *resp.PoolID != 7 || resp.SignTxHash == "" {
		t.Fatalf("response mismatch: %+v", resp)
	}
}

func TestWebhookRejectsPayloadWithoutPoolID(t *testing.T) {
	req := &fakeRequester{}
	srv := newTestServer(req, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"events":[{"type":"event"}]}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(req.targets) != 0 {
		t.Fatalf("requester must not run on an invalid payload")
	}
}

func TestWebhookFailureBeforeAccessTx(t *testing.T) {
	req := &fakeRequester{result: &access.Result{}, err: errors.New("rpc down")}
	recorded := false
	srv := newTestServer(req, func(context.Context, access.Result, error) error {
		recorded = true
		return nil
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if recorded {
		t.Fatalf("request without an access tx must not be recorded")
	}
	var resp webhookResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TxHash != "" || resp.Error != "rpc down" {
		t.Fatalf("response mismatch: %+v", resp)
	}
}

func TestWebhookFailureAfterAccessTxKeepsHash(t *testing.T) {
	accessTx := common.HexToHash("0xfeed")
	req := &fakeRequester{
		result: &access.Result{
			AccessTx: accessTx,
			Paid:     model.PaidEvent{NodeID: big.NewInt(42)},
			Target:   model.PoolFromPayload{PoolID: 7},
		},
		err: errors.New("sign pool 7: send tx: nonce too low"),
	}
	var recordedRes access.Result
	var recordedErr error
	calls := 0
	srv := newTestServer(req, func(_ context.Context, res access.Result, reqErr error) error {
		calls++
		recordedRes, recordedErr = res, reqErr
		return nil
	})

	body := `{"events":[{"type":"event","signature":"PoolReady(uint32,address)","params":{"poolId":7}}]}`
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body)))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	var resp webhookResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "error" || resp.TxHash != accessTx.Hex() || resp.NodeID != "42" {
		t.Fatalf("response mismatch: %+v", resp)
	}
	if resp.PoolID == nil || *resp.PoolID != 7 || resp.SignTxHash != "" {
		t.Fatalf("relay fields mismatch: %+v", resp)
	}
	if !strings.Contains(resp.Error, "nonce too low") {
		t.Fatalf("error mismatch: %q", resp.Error)
	}
	if calls != 1 || recordedRes.AccessTx != accessTx || recordedErr == nil {
		t.Fatalf("expected partial record, calls=%d res=%+v err=%v", calls, recordedRes, recordedErr)
	}
}

func TestWebhookMethodNotAllowed(t *testing.T) {
	srv := newTestServer(&fakeRequester{}, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhook", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&fakeRequester{}, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthz response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestRouteLabel(t *testing.T) {
	cases := map[string]string{
		"/webhook":      "/webhook",
		"/healthz":      "/healthz",
		"/metrics":      "/metrics",
		"/":             "other",
		"/wp-login.php": "other",
		"/webhook/x":    "other",
	}
	for path, want := range cases {
		if got := routeLabel(path); got != want {
			t.Fatalf("routeLabel(%q) = %q, want %q", path, got, want)
		}
	}
}
