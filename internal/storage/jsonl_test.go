package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"nodeAccess/internal/access"
	"nodeAccess/internal/model"
)

func TestJsonlStorageAppendsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "requests.jsonl")
	sink := NewJsonlStorage(path)

	signTx := common.HexToHash("0x02")
	res := access.Result{
		Account:   common.HexToAddress("0x1111111111111111111111111111111111111111"),
		StrongFee: big.NewInt(10),
		NaaSFee:   big.NewInt(20),
		AccessTx:  common.HexToHash("0x01"),
		Paid:      model.PaidEvent{NodeID: big.NewInt(42)},
		Target:    model.PoolFromPayload{PoolID: 7},
		SignTx:    &signTx,
	}
	gate := common.HexToAddress("0x2222222222222222222222222222222222222222")
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		if err := sink.PutRecord(context.Background(), NewRecord(big.NewInt(56), gate, res, nil, at)); err != nil {
			t.Fatalf("put record: %v", err)
		}
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	var lines []model.AccessRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec model.AccessRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		lines = append(lines, rec)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 records, got %d", len(lines))
	}

	rec := lines[0]
	if rec.ChainID != 56 || rec.NodeID != "42" || rec.NaaSFee != "20" {
		t.Fatalf("record mismatch: %+v", rec)
	}
	if rec.PoolID == nil || *rec.PoolID != 7 {
		t.Fatalf("pool id mismatch: %v", rec.PoolID)
	}
	if rec.AllowanceTx != nil {
		t.Fatalf("unexpected allowance tx")
	}
	if rec.SignTx == nil || *rec.SignTx != signTx.Hex() {
		t.Fatalf("sign tx mismatch: %v", rec.SignTx)
	}
	if rec.Failure != nil {
		t.Fatalf("unexpected failure: %v", *rec.Failure)
	}
	if rec.CreatedAt != "2024-01-01T00:00:00Z" {
		t.Fatalf("created at mismatch: %s", rec.CreatedAt)
	}
}

func TestNewRecordKeepsFailure(t *testing.T) {
	res := access.Result{
		AccessTx: common.HexToHash("0xfeed"),
		Paid:     model.PaidEvent{NodeID: big.NewInt(9)},
		Target:   model.PoolFromPayload{PoolID: 7},
	}
	gate := common.HexToAddress("0x2222222222222222222222222222222222222222")
	rec := NewRecord(big.NewInt(1), gate, res, errors.New("sign pool 7: send tx: nonce too low"), time.Now())

	if rec.AccessTx != common.HexToHash("0xfeed").Hex() || rec.NodeID != "9" {
		t.Fatalf("record mismatch: %+v", rec)
	}
	if rec.SignTx != nil {
		t.Fatalf("unexpected sign tx: %v", *rec.SignTx)
	}
	if rec.Failure == nil || *rec.Failure != "sign pool 7: send tx: nonce too low" {
		t.Fatalf("failure mismatch: %v", rec.Failure)
	}
}
