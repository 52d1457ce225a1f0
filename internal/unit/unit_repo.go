package unit

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=unit_repo.go -destination=mock/unit_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, u *Unit) error
	FindAll(ctx context.Context) ([]Unit, error)
	FindByID(ctx context.Context, id string) (*Unit, error)
	Update(ctx context.Context, u *Unit) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, u *Unit) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Unit, error) {
	var units []Unit
	err := r.db.WithContext(ctx).
		Order("name").
		Find(&units).Error
	return units, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Unit, error) {
	var u Unit
	err := r.db.WithContext(ctx).
		First(&u, "id = ?", id).Error
	return &u, err
}

func (r *repository) Update(ctx context.Context, u *Unit) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Unit{}, "id = ?", id).Error
}
