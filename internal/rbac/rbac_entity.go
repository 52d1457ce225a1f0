package rbac

import (
	"time"

	"github.com/google/uuid"
)

type RolePermission struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Role      string    `gorm:"type:varchar(30);not null;uniqueIndex:uq_role_permission,priority:1"`
	Resource  string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_role_permission,priority:2"`
	Action    string    `gorm:"type:varchar(30);not null;uniqueIndex:uq_role_permission,priority:3"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (RolePermission) TableName() string {
	return "role_permissions"
}
