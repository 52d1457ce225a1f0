package position

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Position is a job position (Puesto): a name plus an institutional
// level such as Docente, Administrativo or Directivo.
type Position struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"size:200;not null"`
	Level     string    `gorm:"size:100;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Position) TableName() string {
	return "positions"
}
