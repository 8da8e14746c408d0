package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"nodeAccess/internal/access"
)

func TestReadPayload(t *testing.T) {
	body, err := readPayload("", strings.NewReader("ignored"))
	if err != nil || body != nil {
		t.Fatalf("empty path should yield no payload: %q %v", body, err)
	}

	body, err = readPayload("-", strings.NewReader(`{"events":[]}`))
	if err != nil || string(body) != `{"events":[]}` {
		t.Fatalf("stdin payload mismatch: %q %v", body, err)
	}

	path := filepath.Join(t.TempDir(), "payload.json")
	if err := os.WriteFile(path, []byte(`{"events":[{}]}`), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	body, err = readPayload(path, nil)
	if err != nil || string(body) != `{"events":[{}]}` {
		t.Fatalf("file payload mismatch: %q %v", body, err)
	}

	if _, err := readPayload(filepath.Join(t.TempDir(), "missing.json"), nil); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

type recordCall struct {
	res access.Result
	err error
}

func TestReportResultAfterAccessTxFailure(t *testing.T) {
	var calls []recordCall
	record := func(_ context.Context, res access.Result, reqErr error) error {
		calls = append(calls, recordCall{res: res, err: reqErr})
		return nil
	}
	accessTx := common.HexToHash("0xfeed")
	signErr := errors.New("sign pool 7: send tx: nonce too low")

	var out bytes.Buffer
	err := reportResult(context.Background(), &out, access.Result{AccessTx: accessTx}, signErr, record, zap.NewNop())
	if !errors.Is(err, signErr) {
		t.Fatalf("expected request error, got %v", err)
	}
	if strings.TrimSpace(out.String()) != accessTx.Hex() {
		t.Fatalf("access tx not printed: %q", out.String())
	}
	if len(calls) != 1 || calls[0].res.AccessTx != accessTx || !errors.Is(calls[0].err, signErr) {
		t.Fatalf("expected partial record, got %+v", calls)
	}
}

func TestReportResultBeforeAccessTxFailure(t *testing.T) {
	recorded := false
	record := func(context.Context, access.Result, error) error {
		recorded = true
		return nil
	}
	readErr := errors.New("read allowance: rpc down")

	var out bytes.Buffer
	if err := reportResult(context.Background(), &out, access.Result{}, readErr, record, zap.NewNop()); !errors.Is(err, readErr) {
		t.Fatalf("expected request error, got %v", err)
	}
	if out.Len() != 0 || recorded {
		t.Fatalf("nothing should be printed or recorded: out=%q recorded=%v", out.String(), recorded)
	}
}

func TestReportResultSuccess(t *testing.T) {
	record := func(_ context.Context, _ access.Result, reqErr error) error {
		if reqErr != nil {
			t.Fatalf("unexpected request error: %v", reqErr)
		}
		return errors.New("disk full")
	}
	var out bytes.Buffer
	accessTx := common.HexToHash("0x01")
	if err := reportResult(context.Background(), &out, access.Result{AccessTx: accessTx}, nil, record, zap.NewNop()); err != nil {
		t.Fatalf("record failures must not fail the request: %v", err)
	}
	if strings.TrimSpace(out.String()) != accessTx.Hex() {
		t.Fatalf("access tx not printed: %q", out.String())
	}
}
