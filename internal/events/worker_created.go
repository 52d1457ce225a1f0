package events

import "time"

const WorkerCreatedTopic = "asistencia.worker.lifecycle.v1"

type WorkerCreatedEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id,omitempty"`
	WorkerID       string    `json:"worker_id"`
	UnitID         string    `json:"unit_id"`
	EmployeeNumber string    `json:"employee_number"`
	OccurredAt     time.Time `json:"occurred_at"`
}
