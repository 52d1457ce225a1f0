package attendance

type CreateRecordRequest struct {
	WorkerID  string `json:"worker_id" binding:"required,uuid"`
	Date      string `json:"date" binding:"required"`
	EntryTime string `json:"entry_time"`
	ExitTime  string `json:"exit_time"`
}

type UpdateRecordRequest struct {
	EntryTime string `json:"entry_time"`
	ExitTime  string `json:"exit_time"`
}

type RecordResponse struct {
	ID          string  `json:"id"`
	WorkerID    string  `json:"worker_id"`
	Date        string  `json:"date"`
	EntryTime   *string `json:"entry_time,omitempty"`
	ExitTime    *string `json:"exit_time,omitempty"`
	Status      string  `json:"status"`
	LateMinutes int     `json:"late_minutes"`
}

// ClockResponse tells the self-service client which action the clock
// call performed.
type ClockResponse struct {
	Action string         `json:"action"` // "entry" or "exit"
	Record RecordResponse `json:"record"`
}
