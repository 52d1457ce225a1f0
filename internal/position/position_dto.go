package position

type CreatePositionRequest struct {
	Name  string `json:"name" binding:"required"`
	Level string `json:"level" binding:"required"`
}

type UpdatePositionRequest struct {
	Name  string `json:"name" binding:"required"`
	Level string `json:"level" binding:"required"`
}

type PositionResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level string `json:"level"`
}
