package model

import "github.com/Mohammed137/ascii-master-bot/internal/domain/enums"

// UsageRecord is one quota-counted conversion attempt. Records are append-only:
// never updated, never deleted. Old rows simply fall out of the rolling window.
type UsageRecord struct {
	ID     string            `json:"id"`
	UserID int64             `json:"user_id"`
	Kind   enums.RequestKind `json:"kind"`
	TS     int64             `json:"ts"`
}
