package events

import "time"

const AttendanceRecordedTopic = "asistencia.attendance.recorded.v1"

type AttendanceRecordedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id,omitempty"`
	RecordID    string    `json:"record_id"`
	WorkerID    string    `json:"worker_id"`
	Date        string    `json:"date"`
	Status      string    `json:"status"`
	LateMinutes int       `json:"late_minutes"`
	OccurredAt  time.Time `json:"occurred_at"`
}
