package report

type SummaryResponse struct {
	WorkerID             string  `json:"worker_id"`
	StartDate            string  `json:"start_date"`
	EndDate              string  `json:"end_date"`
	TotalDays            int     `json:"total_days"`
	OnTime               int     `json:"on_time"`
	Late                 int     `json:"late"`
	Absent               int     `json:"absent"`
	Excused              int     `json:"excused"`
	TotalLateMinutes     int     `json:"total_late_minutes"`
	AttendancePercentage float64 `json:"attendance_percentage"`
}
