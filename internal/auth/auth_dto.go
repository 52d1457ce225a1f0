package auth

type RegisterRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	WorkerID *string `json:"worker_id" binding:"omitempty,uuid"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type SetRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=ADMIN SUPERVISOR WORKER PENDING"`
}

type AuthResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	WorkerID string `json:"worker_id,omitempty"`
	UnitID   string `json:"unit_id,omitempty"`
}
