package position

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go-asistencia/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const optionsCacheKey = "positions:options"

//go:generate mockgen -source=position_service.go -destination=mock/position_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreatePositionRequest) (PositionResponse, error)
	GetAll(ctx context.Context) ([]PositionResponse, error)
	GetOptions(ctx context.Context) ([]PositionResponse, error)
	GetByID(ctx context.Context, id string) (PositionResponse, error)
	Update(ctx context.Context, id string, req UpdatePositionRequest) (PositionResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db   *sql.DB
	repo Repository
	rdb  *redis.Client
	sf   *singleflight.Group
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client) Service {
	return &service{db: db, repo: repo, rdb: rdb, sf: &singleflight.Group{}}
}

func (s *service) Create(ctx context.Context, req CreatePositionRequest) (PositionResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PositionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	p := &Position{
		ID:    uuid.New(),
		Name:  req.Name,
		Level: req.Level,
	}

	if err := qtx.Create(ctx, p); err != nil {
		return PositionResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PositionResponse{}, err
	}

	s.invalidateOptions(ctx)

	return mapToResponse(*p), nil
}

func (s *service) GetAll(ctx context.Context) ([]PositionResponse, error) {
	positions, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(positions), nil
}

// GetOptions serves the form-select listing from Redis, with
// singleflight collapsing concurrent cache fills.
func (s *service) GetOptions(ctx context.Context) ([]PositionResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, optionsCacheKey).Result(); err == nil {
			var resp []PositionResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(optionsCacheKey, func() (interface{}, error) {
		positions, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}

		resp := mapToListResponse(positions)

		// Master data, a long TTL is fine.
		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, optionsCacheKey, jsonData, 1*time.Hour)
			}
		}

		return resp, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]PositionResponse), nil
}

func (s *service) GetByID(ctx context.Context, id string) (PositionResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PositionResponse{}, apperror.ErrNotFound
		}
		return PositionResponse{}, err
	}
	return mapToResponse(*p), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdatePositionRequest) (PositionResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PositionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	p, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PositionResponse{}, apperror.ErrNotFound
		}
		return PositionResponse{}, err
	}

	p.Name = req.Name
	p.Level = req.Level

	if err := qtx.Update(ctx, p); err != nil {
		return PositionResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PositionResponse{}, err
	}

	s.invalidateOptions(ctx)

	return mapToResponse(*p), nil
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
	if err := tx.Commit(); err != nil {
		return err
	}

	s.invalidateOptions(ctx)
	return nil
}

func (s *service) invalidateOptions(ctx context.Context) {
	if s.rdb != nil {
		_ = s.rdb.Del(ctx, optionsCacheKey).Err()
	}
}

func mapToResponse(p Position) PositionResponse {
	return PositionResponse{
		ID:    p.ID.String(),
		Name:  p.Name,
		Level: p.Level,
	}
}

func mapToListResponse(positions []Position) []PositionResponse {
	res := make([]PositionResponse, len(positions))
	for i, p := range positions {
		res[i] = mapToResponse(p)
	}
	return res
}
