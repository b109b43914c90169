package purchaserequest

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusDraft    = "DRAFT"
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	// StatusRejected is part of the status vocabulary but no transition sets
	// it yet; the rejection flow was never wired in the product.
	StatusRejected = "REJECTED"
)

// RequestItem is one line of a purchase request, stored inside the request
// row as JSON rather than as a child table.
type RequestItem struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Unit        string `json:"unit"`
}

// PurchaseRequest is owned by the user who created it; reads and edits are
// scoped to that owner. Code is the human-facing sequential identifier.
type PurchaseRequest struct {
	ID            uuid.UUID                        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code          string                           `gorm:"type:varchar(20);not null;uniqueIndex:uq_purchase_requests_code"`
	SequenceID    int64                            `gorm:"type:bigint;not null"`
	UserID        uuid.UUID                        `gorm:"type:uuid;not null;index"`
	Justification string                           `gorm:"type:text;not null"`
	DueDate       time.Time                        `gorm:"type:date;not null"`
	Items         datatypes.JSONSlice[RequestItem] `gorm:"not null"`
	Status        string                           `gorm:"type:varchar(20);not null;default:'DRAFT'"`

	ApprovedAt *time.Time `gorm:"type:timestamptz"`
	ApprovedBy string     `gorm:"type:varchar(255)"`
	DeletedBy  string     `gorm:"type:varchar(255)"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// Editable reports whether the request still accepts content changes.
// Approval freezes the request for good.
func (p *PurchaseRequest) Editable() bool {
	return p.Status == StatusDraft || p.Status == StatusPending
}
