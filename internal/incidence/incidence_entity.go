package incidence

import (
	"time"

	"github.com/google/uuid"
)

// State machine: PENDING is the only state that can transition, to
// AUTHORIZED or REJECTED. Both terminal states record who decided,
// when, and an optional comment.
type State string

const (
	StatePending    State = "PENDING"
	StateAuthorized State = "AUTHORIZED"
	StateRejected   State = "REJECTED"
)

// IncidenceType is the catalog of leave categories (Incapacidad,
// Permiso con goce, ...).
type IncidenceType struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Description           string    `gorm:"size:200;not null;uniqueIndex"`
	RequiresAuthorization bool      `gorm:"not null;default:true"`
	Active                bool      `gorm:"not null;default:true"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (IncidenceType) TableName() string {
	return "incidence_types"
}

type Incidence struct {
	ID                   uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkerID             uuid.UUID     `gorm:"type:uuid;not null;index"`
	TypeID               uuid.UUID     `gorm:"type:uuid;not null"`
	Type                 IncidenceType `gorm:"foreignKey:TypeID"`
	StartDate            time.Time     `gorm:"type:date;not null"`
	EndDate              time.Time     `gorm:"type:date;not null"`
	Observations         string        `gorm:"type:text"`
	State                State         `gorm:"size:12;not null;default:PENDING"`
	AuthorizedBy         *uuid.UUID    `gorm:"type:uuid"`
	AuthorizedAt         *time.Time
	AuthorizationComment string `gorm:"type:text"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
	CreatedBy            *uuid.UUID `gorm:"type:uuid"`
	UpdatedBy            *uuid.UUID `gorm:"type:uuid"`
}

func (Incidence) TableName() string {
	return "incidences"
}

// DurationDays is the inclusive length of the covered range.
func (i Incidence) DurationDays() int {
	return int(i.EndDate.Sub(i.StartDate).Hours()/24) + 1
}

// Editable and authorizable only while pending.
func (i Incidence) CanTransition() bool {
	return i.State == StatePending
}

// Overlaps reports whether the incidence's range intersects [start, end].
func (i Incidence) Overlaps(start, end time.Time) bool {
	return !start.After(i.EndDate) && !end.Before(i.StartDate)
}
