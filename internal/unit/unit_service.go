package unit

import (
	"context"
	"database/sql"
	"errors"

	"go-asistencia/internal/shared/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=unit_service.go -destination=mock/unit_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateUnitRequest) (UnitResponse, error)
	GetAll(ctx context.Context) ([]UnitResponse, error)
	GetByID(ctx context.Context, id string) (UnitResponse, error)
	Update(ctx context.Context, id string, req UpdateUnitRequest) (UnitResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db   *sql.DB
	repo Repository
}

func NewService(db *sql.DB, repo Repository) Service {
	return &service{db: db, repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateUnitRequest) (UnitResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UnitResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	u := &Unit{
		ID:       uuid.New(),
		Name:     req.Name,
		Location: req.Location,
		Phone:    req.Phone,
	}

	if err := qtx.Create(ctx, u); err != nil {
		return UnitResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return UnitResponse{}, err
	}

	return mapToResponse(*u), nil
}

func (s *service) GetAll(ctx context.Context) ([]UnitResponse, error) {
	units, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	return mapToListResponse(units), nil
}

func (s *service) GetByID(ctx context.Context, id string) (UnitResponse, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UnitResponse{}, apperror.ErrNotFound
		}
		return UnitResponse{}, err
	}

	return mapToResponse(*u), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateUnitRequest) (UnitResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UnitResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	u, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UnitResponse{}, apperror.ErrNotFound
		}
		return UnitResponse{}, err
	}

	u.Name = req.Name
	u.Location = req.Location
	u.Phone = req.Phone

	if err := qtx.Update(ctx, u); err != nil {
		return UnitResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return UnitResponse{}, err
	}

	return mapToResponse(*u), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := qtx.Delete(ctx, id); err != nil {
		return err
	}

	return tx.Commit()
}

func mapToResponse(u Unit) UnitResponse {
	return UnitResponse{
		ID:       u.ID.String(),
		Name:     u.Name,
		Location: u.Location,
		Phone:    u.Phone,
	}
}

func mapToListResponse(units []Unit) []UnitResponse {
	res := make([]UnitResponse, len(units))
	for i, u := range units {
		res[i] = mapToResponse(u)
	}
	return res
}
