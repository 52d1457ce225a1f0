package rbac

import (
	"context"

	"go-asistencia/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	GetRolePermissions(ctx context.Context) ([]RolePermission, error)
	Grant(ctx context.Context, p *RolePermission) error
	Revoke(ctx context.Context, role, resource, action string) error
	SeedDefaults(ctx context.Context) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetRolePermissions(ctx context.Context) ([]RolePermission, error) {
	var perms []RolePermission
	err := r.db.WithContext(ctx).
		Order("role, resource, action").
		Find(&perms).Error
	return perms, err
}

func (r *repository) Grant(ctx context.Context, p *RolePermission) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(p).Error
}

func (r *repository) Revoke(ctx context.Context, role, resource, action string) error {
	return r.db.WithContext(ctx).
		Where("role = ? AND resource = ? AND action = ?", role, resource, action).
		Delete(&RolePermission{}).Error
}

// defaultPermissions is the institutional permission matrix. Admin holds
// everything; supervisors manage their unit's schedules, records and
// incidences; workers clock in/out and read their own data.
var defaultPermissions = []struct {
	role, resource string
	actions        []string
}{
	{domain.RoleAdmin, "unit", []string{"create", "read", "update", "delete"}},
	{domain.RoleAdmin, "position", []string{"create", "read", "update", "delete"}},
	{domain.RoleAdmin, "worker", []string{"create", "read", "update", "delete"}},
	{domain.RoleAdmin, "schedule", []string{"create", "read", "update", "delete"}},
	{domain.RoleAdmin, "calendar", []string{"create", "read", "update", "delete"}},
	{domain.RoleAdmin, "attendance", []string{"create", "read", "update"}},
	{domain.RoleAdmin, "incidence", []string{"create", "read", "update", "authorize"}},
	{domain.RoleAdmin, "report", []string{"read", "export"}},
	{domain.RoleAdmin, "rbac", []string{"read", "update"}},

	{domain.RoleSupervisor, "worker", []string{"read"}},
	{domain.RoleSupervisor, "schedule", []string{"create", "read", "update"}},
	{domain.RoleSupervisor, "calendar", []string{"read"}},
	{domain.RoleSupervisor, "attendance", []string{"create", "read", "update"}},
	{domain.RoleSupervisor, "incidence", []string{"create", "read", "update", "authorize"}},
	{domain.RoleSupervisor, "report", []string{"read", "export"}},

	{domain.RoleWorker, "attendance", []string{"create", "read"}},
	{domain.RoleWorker, "incidence", []string{"create", "read"}},
	{domain.RoleWorker, "schedule", []string{"read"}},
}

// SeedDefaults inserts the default matrix, skipping rows that already
// exist so repeated startups are harmless.
func (r *repository) SeedDefaults(ctx context.Context) error {
	for _, d := range defaultPermissions {
		for _, action := range d.actions {
			p := &RolePermission{Role: d.role, Resource: d.resource, Action: action}
			if err := r.Grant(ctx, p); err != nil {
				return err
			}
		}
	}
	return nil
}
