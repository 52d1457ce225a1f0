package attendance

import (
	"time"

	"github.com/google/uuid"
)

// Status is the daily classification of a worker's attendance.
type Status string

const (
	StatusOnTime  Status = "ON_TIME"
	StatusLate    Status = "LATE"
	StatusAbsent  Status = "ABSENT"
	StatusExcused Status = "EXCUSED"
)

// Record is the single attendance row per worker per date. Entry and
// exit are times of day stored as HH:MM:SS; status and late minutes
// are recomputed from the schedule rules every time the row is saved.
type Record struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkerID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_worker_date"`
	Date        time.Time `gorm:"type:date;not null;uniqueIndex:idx_attendance_worker_date"`
	EntryTime   *string   `gorm:"size:8"`
	ExitTime    *string   `gorm:"size:8"`
	Status      Status    `gorm:"size:8;not null;default:ABSENT"`
	LateMinutes int       `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreatedBy   *uuid.UUID `gorm:"type:uuid"`
	UpdatedBy   *uuid.UUID `gorm:"type:uuid"`
}

func (Record) TableName() string {
	return "attendance_records"
}
