package unit

import "gorm.io/gorm"

// Scope restricts a query to rows belonging to one administrative unit.
// Supervisors pass their own unit id; admins skip the scope entirely.
func Scope(unitID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("unit_id = ?", unitID)
	}
}
