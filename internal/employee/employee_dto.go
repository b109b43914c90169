package employee

type CreateEmployeeRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Department  string `json:"department" binding:"required"`
	AccessLevel int    `json:"access_level" binding:"min=0,max=4"`
}

type UpdateEmployeeRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Department  string `json:"department" binding:"required"`
	AccessLevel int    `json:"access_level" binding:"min=0,max=4"`
}

type EmployeeResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Department  string `json:"department"`
	AccessLevel int    `json:"access_level"`
	CreatedBy   string `json:"created_by,omitempty"`
	UpdatedBy   string `json:"updated_by,omitempty"`
	CreatedAt   string `json:"created_at"`
	DeletedAt   string `json:"deleted_at,omitempty"`
}
