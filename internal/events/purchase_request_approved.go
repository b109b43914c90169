package events

import "time"

const PurchaseRequestApprovedTopic = "compras.purchase_request.lifecycle.v1"

type PurchaseRequestApprovedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id"`
	Code       string    `json:"code"`
	OwnerID    string    `json:"owner_id"`
	ApprovedBy string    `json:"approved_by"`
	OccurredAt time.Time `json:"occurred_at"`
}
