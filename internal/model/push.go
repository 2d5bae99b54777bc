package model

import "time"

// PushSubscription is a stored Web Push endpoint for one player's device.
type PushSubscription struct {
	ID        int64     `json:"id"`
	PlayerID  string    `json:"player_id"`
	Endpoint  string    `json:"endpoint"`
	P256dh    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	CreatedAt time.Time `json:"created_at"`
}
