package model

// PoolTarget selects what happens to a node id after access is granted.
// It is either ManualPool or PoolFromPayload.
type PoolTarget interface {
	isPoolTarget()
}

// ManualPool means no pool is known; the node id is associated out of band.
type ManualPool struct{}

// PoolFromPayload carries the pool id taken from a webhook payload.
type PoolFromPayload struct {
	PoolID uint32
}

func (ManualPool) isPoolTarget()      {}
func (PoolFromPayload) isPoolTarget() {}
