package outbox

import (
	"encoding/json"
	"time"
)

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version        int             `json:"version"`
	EventID        string          `json:"eventId"`
	OccurredAt     time.Time       `json:"occurredAt"`
	OrderReference string          `json:"orderReference,omitempty"`
	Data           json.RawMessage `json:"data"`
}
