package unit

type CreateUnitRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
	Phone    string `json:"phone"`
}

type UpdateUnitRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
	Phone    string `json:"phone"`
}

type UnitResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Phone    string `json:"phone,omitempty"`
}
