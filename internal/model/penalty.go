package model

import "time"

// PenaltyStatus tracks whether a real-money penalty has been settled.
type PenaltyStatus string

const (
	PenaltyPending  PenaltyStatus = "pending"
	PenaltyResolved PenaltyStatus = "resolved"
)

// Penalty is a real-money commitment penalty issued by the judgment cycle
// on a badly failed day. It stays pending until the player submits proof
// of payment and an admin resolves it.
type Penalty struct {
	ID       int64         `json:"id"`
	PlayerID string        `json:"player_id"`
	Amount   int64         `json:"amount"`
	Currency string        `json:"currency"`
	Reason   string        `json:"reason"`
	Status   PenaltyStatus `json:"status"`
	ProofURL string        `json:"proof_url"`

	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at"`
}
