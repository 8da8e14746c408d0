package model

import "encoding/json"

// WebhookPayload is the request body sent by a sentinel or webhook trigger.
type WebhookPayload struct {
	Events []SentinelEvent `json:"events"`
}

// SentinelEvent describes one matched on-chain event.
type SentinelEvent struct {
	Type         string                     `json:"type"`
	Signature    string                     `json:"signature"`
	Params       map[string]json.RawMessage `json:"params"`
	MatchReasons []MatchReason              `json:"matchReasons"`
}

// MatchReason is one condition that made the sentinel fire.
type MatchReason struct {
	Type      string                     `json:"type"`
	Signature string                     `json:"signature"`
	Params    map[string]json.RawMessage `json:"params"`
}
