package model

// AccessRecord is the audit record written after an access request.
// Failure is set when a step after the access transaction failed.
type AccessRecord struct {
	ChainID     uint64  `json:"chain_id"`
	Account     string  `json:"account"`
	AccessGate  string  `json:"access_gate"`
	StrongFee   string  `json:"strong_fee"`
	NaaSFee     string  `json:"naas_fee"`
	AllowanceTx *string `json:"allowance_tx,omitempty"`
	AccessTx    string  `json:"access_tx"`
	NodeID      string  `json:"node_id"`
	PoolID      *uint32 `json:"pool_id,omitempty"`
	SignTx      *string `json:"sign_tx,omitempty"`
	Failure     *string `json:"failure,omitempty"`
	CreatedAt   string  `json:"created_at"`
}
