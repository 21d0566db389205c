package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	AuditEntityBooking = "booking"
	AuditEntityCar     = "car"
	AuditEntityUser    = "user"
)

// AuditEntry is one fact written to the audit sink. Detail is a JSON object.
type AuditEntry struct {
	ID         int64           `json:"id"`
	ActorID    uuid.UUID       `json:"actor_id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id"`
	Detail     json.RawMessage `json:"detail"`
	CreatedAt  time.Time       `json:"created_at"`
}
