package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"nodeAccess/internal/model"
)

// PoolIDParam is the payload field carrying the pool id.
const PoolIDParam = "poolId"

// DefaultPoolEventSignature is the event the pool-creation sentinel watches.
const DefaultPoolEventSignature = "PoolReady(uint32,address)"

var (
	ErrNoEvents       = errors.New("payload has no events")
	ErrPoolIDNotFound = errors.New("pool id not found in payload")
	ErrInvalidPoolID  = errors.New("invalid pool id")
)

// Resolver turns raw request bodies into pool targets.
type Resolver struct {
	// Signature restricts which match reasons may supply the pool id.
	// Reasons without a signature are always considered.
	Signature string
}

// NewResolver returns a Resolver matching the given event signature.
func NewResolver(signature string) *Resolver {
	return &Resolver{Signature: strings.TrimSpace(signature)}
}

// Target decodes body and picks the pool target. An empty body means the
// invocation was not triggered by a webhook and yields ManualPool.
func (r *Resolver) Target(body []byte) (model.PoolTarget, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return model.ManualPool{}, nil
	}

	var payload model.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return r.TargetFromPayload(payload)
}

// TargetFromPayload looks the pool id up by field name. Match reasons are
// searched first, in event order, then the event-level params.
func (r *Resolver) TargetFromPayload(payload model.WebhookPayload) (model.PoolTarget, error) {
	if len(payload.Events) == 0 {
		return nil, ErrNoEvents
	}

	for i, evt := range payload.Events {
		for j, reason := range evt.MatchReasons {
			if !r.signatureMatches(reason.Signature) {
				continue
			}
			raw, ok := reason.Params[PoolIDParam]
			if !ok {
				continue
			}
			id, err := parsePoolID(raw)
			if err != nil {
				return nil, fmt.Errorf("events[%d].matchReasons[%d]: %w", i, j, err)
			}
			return model.PoolFromPayload{PoolID: id}, nil
		}
	}

	for i, evt := range payload.Events {
		if evt.Type != "" && evt.Type != "event" {
			continue
		}
		if !r.signatureMatches(evt.Signature) {
			continue
		}
		raw, ok := evt.Params[PoolIDParam]
		if !ok {
			continue
		}
		id, err := parsePoolID(raw)
		if err != nil {
			return nil, fmt.Errorf("events[%d]: %w", i, err)
		}
		return model.PoolFromPayload{PoolID: id}, nil
	}

	return nil, ErrPoolIDNotFound
}

func (r *Resolver) signatureMatches(signature string) bool {
	if r == nil || r.Signature == "" || signature == "" {
		return true
	}
	return strings.EqualFold(strings.ReplaceAll(signature, " ", ""), strings.ReplaceAll(r.Signature, " ", ""))
}

// parsePoolID accepts JSON numbers and decimal or 0x-prefixed hex strings.
func parsePoolID(raw json.RawMessage) (uint32, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		var num json.Number
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&num); err != nil {
			return 0, fmt.Errorf("%w: %s", ErrInvalidPoolID, string(raw))
		}
		text = num.String()
	}

	text = strings.TrimSpace(text)
	base := 10
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		text, base = text[2:], 16
	}
	v, err := strconv.ParseUint(text, base, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPoolID, text)
	}
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d overflows uint32", ErrInvalidPoolID, v)
	}
	return uint32(v), nil
}
