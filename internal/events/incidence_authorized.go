package events

import "time"

const IncidenceAuthorizedTopic = "asistencia.incidence.authorized.v1"

type IncidenceAuthorizedEvent struct {
	EventType    string    `json:"event_type"`
	RequestID    string    `json:"request_id,omitempty"`
	IncidenceID  string    `json:"incidence_id"`
	WorkerID     string    `json:"worker_id"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	AuthorizedBy string    `json:"authorized_by"`
	OccurredAt   time.Time `json:"occurred_at"`
}
