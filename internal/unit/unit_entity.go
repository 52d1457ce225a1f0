package unit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Unit is an administrative unit of the institution. Workers belong to
// exactly one; supervisors are scoped to their own.
type Unit struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"size:255;not null;uniqueIndex"`
	Location  string    `gorm:"size:255"`
	Phone     string    `gorm:"size:20"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Unit) TableName() string {
	return "units"
}
