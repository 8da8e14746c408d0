package storage

import (
	"context"

	"nodeAccess/internal/model"
)

// Storage defines a sink for access request records.
type Storage interface {
	PutRecord(ctx context.Context, record model.AccessRecord) error
}

// Nop discards records.
type Nop struct{}

func (Nop) PutRecord(context.Context, model.AccessRecord) error { return nil }
