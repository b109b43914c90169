package purchaserequest

type RequestItemInput struct {
	Description string `json:"description" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	Unit        string `json:"unit" binding:"required"`
}

type CreatePurchaseRequestRequest struct {
	Justification string             `json:"justification" binding:"required,min=10"`
	DueDate       string             `json:"due_date" binding:"required"`
	Items         []RequestItemInput `json:"items" binding:"required,min=1,dive"`
	IsDraft       bool               `json:"is_draft"`
}

type UpdatePurchaseRequestRequest struct {
	Justification string             `json:"justification" binding:"required,min=10"`
	DueDate       string             `json:"due_date" binding:"required"`
	Items         []RequestItemInput `json:"items" binding:"required,min=1,dive"`
	IsDraft       bool               `json:"is_draft"`
}

type PurchaseRequestResponse struct {
	ID            string        `json:"id"`
	Code          string        `json:"code"`
	UserID        string        `json:"user_id"`
	Justification string        `json:"justification"`
	DueDate       string        `json:"due_date"`
	Items         []RequestItem `json:"items"`
	Status        string        `json:"status"`
	ApprovedAt    string        `json:"approved_at,omitempty"`
	ApprovedBy    string        `json:"approved_by,omitempty"`
	CreatedAt     string        `json:"created_at"`
	DeletedAt     string        `json:"deleted_at,omitempty"`
}
