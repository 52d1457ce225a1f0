package worker

type CreateWorkerRequest struct {
	EmployeeNumber    string `json:"employee_number"`
	FirstName         string `json:"first_name" binding:"required"`
	LastNamePaternal  string `json:"last_name_paternal" binding:"required"`
	LastNameMaternal  string `json:"last_name_maternal"`
	RFC               string `json:"rfc"`
	CURP              string `json:"curp"`
	UnitID            string `json:"unit_id" binding:"required,uuid"`
	PositionID        string `json:"position_id" binding:"required,uuid"`
	AppointmentTypeID string `json:"appointment_type_id" binding:"omitempty,uuid"`
}

type UpdateWorkerRequest struct {
	FirstName         string `json:"first_name" binding:"required"`
	LastNamePaternal  string `json:"last_name_paternal" binding:"required"`
	LastNameMaternal  string `json:"last_name_maternal"`
	RFC               string `json:"rfc"`
	CURP              string `json:"curp"`
	UnitID            string `json:"unit_id" binding:"required,uuid"`
	PositionID        string `json:"position_id" binding:"required,uuid"`
	AppointmentTypeID string `json:"appointment_type_id" binding:"omitempty,uuid"`
	Active            *bool  `json:"active"`
}

type WorkerResponse struct {
	ID                string  `json:"id"`
	EmployeeNumber    string  `json:"employee_number"`
	FirstName         string  `json:"first_name"`
	LastNamePaternal  string  `json:"last_name_paternal"`
	LastNameMaternal  string  `json:"last_name_maternal,omitempty"`
	FullName          string  `json:"full_name"`
	RFC               string  `json:"rfc,omitempty"`
	CURP              string  `json:"curp,omitempty"`
	UnitID            string  `json:"unit_id"`
	PositionID        string  `json:"position_id"`
	AppointmentTypeID *string `json:"appointment_type_id,omitempty"`
	Active            bool    `json:"active"`
}

type CreateAppointmentTypeRequest struct {
	Description string `json:"description" binding:"required"`
}

type AppointmentTypeResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}
