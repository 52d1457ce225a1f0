package auth

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	autherrors "go-asistencia/internal/auth/errors"
	"go-asistencia/internal/domain"
	"go-asistencia/internal/worker"
	workererrors "go-asistencia/internal/worker/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, resp AuthResponse, err error)
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken, newRefreshToken string, resp AuthResponse, err error)
	GetMe(ctx context.Context, userID string) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
	SetRole(ctx context.Context, userID, role string) (AuthResponse, error)
}

type service struct {
	repo       Repository
	workerRepo worker.Repository
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(repo Repository, workerRepo worker.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{repo: repo, workerRepo: workerRepo, logger: l, now: time.Now}
}

func (s *service) Login(ctx context.Context, email, password string) (string, string, AuthResponse, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		return "", "", AuthResponse{}, autherrors.ErrAccountInactive
	}

	unitID := s.lookupUnit(ctx, user)

	accessToken, err := s.generateToken(user, unitID, accessTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}
	refreshToken, err := s.generateToken(user, unitID, refreshTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	s.logger.Info("login success",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role),
	)
	return accessToken, refreshToken, mapToResponse(user, unitID), nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, string, AuthResponse, error) {
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return "", "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", AuthResponse{}, autherrors.ErrInvalidToken
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return "", "", AuthResponse{}, autherrors.ErrInvalidToken
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidUserID
	}

	// Re-read the user so role changes and deactivations take effect
	// on the next refresh.
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrUserNotFound
	}
	if !user.IsActive {
		return "", "", AuthResponse{}, autherrors.ErrAccountInactive
	}

	unitID := s.lookupUnit(ctx, user)

	newAccessToken, err := s.generateToken(user, unitID, accessTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}
	newRefreshToken, err := s.generateToken(user, unitID, refreshTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	return newAccessToken, newRefreshToken, mapToResponse(user, unitID), nil
}

func (s *service) GetMe(ctx context.Context, userID string) (*AuthResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, autherrors.ErrInvalidUserID
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, autherrors.ErrUserNotFound
	}

	resp := mapToResponse(user, s.lookupUnit(ctx, user))
	return &resp, nil
}

// Register creates a PENDING account. An administrator assigns the
// real role afterwards through SetRole.
func (s *service) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, err
	}

	user := &User{
		ID:       uuid.New(),
		Name:     req.Name,
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: string(hashed),
		Role:     domain.RolePending,
		IsActive: true,
	}

	if req.WorkerID != nil && *req.WorkerID != "" {
		wid, err := uuid.Parse(*req.WorkerID)
		if err != nil {
			return AuthResponse{}, workererrors.ErrInvalidWorkerID
		}
		if _, err := s.workerRepo.FindByID(ctx, wid.String()); err != nil {
			return AuthResponse{}, workererrors.ErrWorkerNotFound
		}
		user.WorkerID = &wid
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return AuthResponse{}, mapCreateError(err)
	}

	s.logger.Info("account registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
	)
	return mapToResponse(user, s.lookupUnit(ctx, user)), nil
}

func (s *service) SetRole(ctx context.Context, userID, role string) (AuthResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return AuthResponse{}, autherrors.ErrInvalidUserID
	}

	switch role {
	case domain.RoleAdmin, domain.RoleSupervisor, domain.RoleWorker, domain.RolePending:
	default:
		return AuthResponse{}, autherrors.ErrUnknownRole
	}

	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuthResponse{}, autherrors.ErrUserNotFound
		}
		return AuthResponse{}, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return AuthResponse{}, autherrors.ErrUserNotFound
	}

	s.logger.Info("role assigned",
		zap.String("user_id", userID),
		zap.String("role", role),
	)
	return mapToResponse(user, s.lookupUnit(ctx, user)), nil
}

// lookupUnit is best effort. A missing link or a storage error leaves
// the unit claim empty, which only narrows what the caller can see.
func (s *service) lookupUnit(ctx context.Context, user *User) string {
	if user.WorkerID == nil || *user.WorkerID == uuid.Nil {
		return ""
	}
	unitID, err := s.repo.WorkerUnit(ctx, *user.WorkerID)
	if err != nil {
		s.logger.Warn("worker unit lookup failed",
			zap.Error(err),
			zap.String("worker_id", user.WorkerID.String()),
		)
		return ""
	}
	return unitID
}

func (s *service) generateToken(user *User, unitID string, expiry time.Duration) (string, error) {
	workerID := ""
	if user.WorkerID != nil {
		workerID = user.WorkerID.String()
	}

	claims := jwt.MapClaims{
		"user_id":   user.ID.String(),
		"worker_id": workerID,
		"unit_id":   unitID,
		"role":      user.Role,
		"exp":       s.now().Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func mapCreateError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "idx_users_worker_id"):
		return autherrors.ErrWorkerAlreadyLinked
	case strings.Contains(msg, "duplicate key value"):
		return autherrors.ErrEmailAlreadyRegistered
	default:
		return err
	}
}

func mapToResponse(user *User, unitID string) AuthResponse {
	resp := AuthResponse{
		ID:     user.ID.String(),
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
		UnitID: unitID,
	}
	if user.WorkerID != nil {
		resp.WorkerID = user.WorkerID.String()
	}
	return resp
}
