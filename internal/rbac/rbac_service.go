package rbac

import (
	"context"
	"sync"

	"go-asistencia/internal/domain"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadPolicy(ctx context.Context) error
	Enforce(req domain.EnforceRequest) (bool, error)
	ListPermissions(ctx context.Context) ([]domain.PermissionResponse, error)
	Grant(ctx context.Context, req domain.GrantPermissionRequest) error
	Revoke(ctx context.Context, req domain.GrantPermissionRequest) error
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	logger   *zap.Logger
	mu       sync.Mutex
}

func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{
		repo:     repo,
		enforcer: enforcer,
		logger:   l,
	}
}

func (s *service) LoadPolicy(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadPolicyUnlocked(ctx)
}

func (s *service) loadPolicyUnlocked(ctx context.Context) error {
	s.enforcer.ClearPolicy()

	perms, err := s.repo.GetRolePermissions(ctx)
	if err != nil {
		return err
	}
	s.logger.Debug("rbac policy loaded", zap.Int("role_permissions", len(perms)))

	for _, p := range perms {
		if _, err := s.enforcer.AddPolicy(p.Role, p.Resource, p.Action); err != nil {
			return err
		}
	}

	return nil
}

// Enforce reloads the persisted matrix and checks the actor's role.
// The role arrives from the verified token; the grouping policy binds
// the concrete user to it for this evaluation.
func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadPolicyUnlocked(context.Background()); err != nil {
		return false, err
	}

	if _, err := s.enforcer.AddGroupingPolicy(req.UserID, req.Role); err != nil {
		return false, err
	}

	allowed, err := s.enforcer.Enforce(req.UserID, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("user_id", req.UserID),
			zap.String("role", req.Role),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("user_id", req.UserID),
		zap.String("role", req.Role),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

func (s *service) ListPermissions(ctx context.Context) ([]domain.PermissionResponse, error) {
	perms, err := s.repo.GetRolePermissions(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.PermissionResponse, len(perms))
	for i, p := range perms {
		resp[i] = domain.PermissionResponse{
			Role:     p.Role,
			Resource: p.Resource,
			Action:   p.Action,
		}
	}
	return resp, nil
}

func (s *service) Grant(ctx context.Context, req domain.GrantPermissionRequest) error {
	return s.repo.Grant(ctx, &RolePermission{
		Role:     req.Role,
		Resource: req.Resource,
		Action:   req.Action,
	})
}

func (s *service) Revoke(ctx context.Context, req domain.GrantPermissionRequest) error {
	return s.repo.Revoke(ctx, req.Role, req.Resource, req.Action)
}
