package incidence

type CreateIncidenceRequest struct {
	WorkerID     string `json:"worker_id" binding:"required,uuid"`
	TypeID       string `json:"type_id" binding:"required,uuid"`
	StartDate    string `json:"start_date" binding:"required"`
	EndDate      string `json:"end_date" binding:"required"`
	Observations string `json:"observations"`
}

type UpdateIncidenceRequest struct {
	TypeID       string `json:"type_id" binding:"required,uuid"`
	StartDate    string `json:"start_date" binding:"required"`
	EndDate      string `json:"end_date" binding:"required"`
	Observations string `json:"observations"`
}

type DecisionRequest struct {
	Comment string `json:"comment"`
}

type IncidenceResponse struct {
	ID              string   `json:"id"`
	WorkerID        string   `json:"worker_id"`
	TypeID          string   `json:"type_id"`
	TypeDescription string   `json:"type_description,omitempty"`
	StartDate       string   `json:"start_date"`
	EndDate         string   `json:"end_date"`
	DurationDays    int      `json:"duration_days"`
	Observations    string   `json:"observations,omitempty"`
	State           string   `json:"state"`
	AuthorizedBy    *string  `json:"authorized_by,omitempty"`
	AuthorizedAt    *string  `json:"authorized_at,omitempty"`
	Comment         string   `json:"authorization_comment,omitempty"`
	Actions         *Actions `json:"actions,omitempty"`
}

type CreateIncidenceTypeRequest struct {
	Description           string `json:"description" binding:"required"`
	RequiresAuthorization *bool  `json:"requires_authorization"`
}

type IncidenceTypeResponse struct {
	ID                    string `json:"id"`
	Description           string `json:"description"`
	RequiresAuthorization bool   `json:"requires_authorization"`
	Active                bool   `json:"active"`
}
