package schedule

type CreateShiftRequest struct {
	Kind      string `json:"kind" binding:"required,oneof=MAT VES NOC COM MED INT ESP"`
	EntryTime string `json:"entry_time" binding:"required"`
	ExitTime  string `json:"exit_time" binding:"required"`
	Weekdays  []int  `json:"weekdays" binding:"required,min=1,dive,min=1,max=7"`
}

type UpdateShiftRequest struct {
	Kind      string `json:"kind" binding:"required,oneof=MAT VES NOC COM MED INT ESP"`
	EntryTime string `json:"entry_time" binding:"required"`
	ExitTime  string `json:"exit_time" binding:"required"`
	Weekdays  []int  `json:"weekdays" binding:"required,min=1,dive,min=1,max=7"`
}

type ShiftResponse struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	Label         string `json:"label"`
	EntryTime     string `json:"entry_time"`
	ExitTime      string `json:"exit_time"`
	Weekdays      []int  `json:"weekdays"`
	WeekdaysShort string `json:"weekdays_short"`
}

type CreateCalendarDayRequest struct {
	Date        string `json:"date" binding:"required"`
	NonBusiness bool   `json:"non_business"`
	Description string `json:"description"`
}

type CalendarDayResponse struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	NonBusiness bool   `json:"non_business"`
	Description string `json:"description,omitempty"`
}

type CreateAssignmentRequest struct {
	WorkerID  string `json:"worker_id" binding:"required,uuid"`
	ShiftID   string `json:"shift_id" binding:"required,uuid"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date"`
}

type UpdateAssignmentRequest struct {
	ShiftID   string `json:"shift_id" binding:"required,uuid"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date"`
}

type AssignmentResponse struct {
	ID        string  `json:"id"`
	WorkerID  string  `json:"worker_id"`
	ShiftID   string  `json:"shift_id"`
	ShiftKind string  `json:"shift_kind,omitempty"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date,omitempty"`
	Current   bool    `json:"current"`
}
