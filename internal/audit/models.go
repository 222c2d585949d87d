package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	TokenID   string    `json:"token_id,omitempty"`
	Owner     string    `json:"owner,omitempty"`
	Caller    string    `json:"caller,omitempty"`
	Channel   string    `json:"channel,omitempty"`
	Decision  string    `json:"decision"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

type Action string

const (
	ActionBagClaimed      Action = "bag_claimed"
	ActionClaimRejected   Action = "bag_claim_rejected"
	ActionIssuancePaused  Action = "issuance_paused"
	ActionIssuanceResumed Action = "issuance_resumed"
)

const (
	DecisionIssued   = "issued"
	DecisionRejected = "rejected"
	DecisionApplied  = "applied"
)
