package worker

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Worker struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeNumber    string     `gorm:"column:employee_number;size:20;not null;uniqueIndex"`
	FirstName         string     `gorm:"size:150;not null"`
	LastNamePaternal  string     `gorm:"size:150;not null"`
	LastNameMaternal  string     `gorm:"size:150"`
	RFC               string     `gorm:"column:rfc;size:13"`
	CURP              string     `gorm:"column:curp;size:18"`
	UnitID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	PositionID        uuid.UUID  `gorm:"type:uuid;not null"`
	AppointmentTypeID *uuid.UUID `gorm:"type:uuid"`
	Active            bool       `gorm:"not null;default:true"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	CreatedBy         *uuid.UUID `gorm:"type:uuid"`
	UpdatedBy         *uuid.UUID `gorm:"type:uuid"`
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

func (Worker) TableName() string {
	return "workers"
}

// FullName joins the name parts, skipping an absent maternal surname.
func (w Worker) FullName() string {
	parts := []string{w.FirstName, w.LastNamePaternal}
	if w.LastNameMaternal != "" {
		parts = append(parts, w.LastNameMaternal)
	}
	return strings.Join(parts, " ")
}

// AppointmentType is the contract category of a worker (Base,
// Confianza, Interino).
type AppointmentType struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Description string    `gorm:"size:150;not null;uniqueIndex"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (AppointmentType) TableName() string {
	return "appointment_types"
}
