package entity

import "time"

// PurchaseOrder is created exactly once per indent when procurement
// approval is complete. Its lifecycle past issuance is independent of
// the indent workflow.
type PurchaseOrder struct {
	ID           string     `json:"id"`
	IndentID     string     `json:"indent_id"`
	VendorID     string     `json:"vendor_id"`
	PONumber     string     `json:"po_number"`
	Amount       float64    `json:"amount"`
	Status       string     `json:"status"`
	IssueDate    time.Time  `json:"issue_date"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`
}
