package supplier

type CreateSupplierRequest struct {
	Name        string   `json:"name" binding:"required"`
	Cnpj        string   `json:"cnpj" binding:"required,min=14"`
	Email       string   `json:"email" binding:"required,email"`
	ContactName string   `json:"contact_name" binding:"required"`
	Phone       string   `json:"phone" binding:"required,min=10"`
	Categories  []string `json:"categories" binding:"required,min=1,dive,required"`
}

type UpdateSupplierRequest struct {
	Name        string   `json:"name" binding:"required"`
	Cnpj        string   `json:"cnpj" binding:"required,min=14"`
	Email       string   `json:"email" binding:"required,email"`
	ContactName string   `json:"contact_name" binding:"required"`
	Phone       string   `json:"phone" binding:"required,min=10"`
	Categories  []string `json:"categories" binding:"required,min=1,dive,required"`
}

type SupplierResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Cnpj        string   `json:"cnpj"`
	Email       string   `json:"email"`
	ContactName string   `json:"contact_name"`
	Phone       string   `json:"phone"`
	Categories  []string `json:"categories"`
	CreatedBy   string   `json:"created_by,omitempty"`
	UpdatedBy   string   `json:"updated_by,omitempty"`
	CreatedAt   string   `json:"created_at"`
	DeletedAt   string   `json:"deleted_at,omitempty"`
}
