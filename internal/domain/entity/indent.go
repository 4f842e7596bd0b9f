package entity

import "time"

// Indent is a purchase request moving through the approval ladder.
// It is the aggregate root for its approvals.
type Indent struct {
	ID          string     `json:"id"`
	RequesterID string     `json:"requester_id"`
	Department  string     `json:"department"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	BudgetCode  string     `json:"budget_code,omitempty"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Amount      float64    `json:"amount"`
	Items       []*IndentItem `json:"items,omitempty"`
	Approvals   []*Approval   `json:"approvals,omitempty"`
	SLADeadline *time.Time `json:"sla_deadline,omitempty"`
	// Version increments on every status transition; writers must present
	// the version they read for the update to commit.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IndentItem is a single requested line item
type IndentItem struct {
	ID            string  `json:"id"`
	IndentID      string  `json:"indent_id"`
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	Quantity      float64 `json:"quantity"`
	Unit          string  `json:"unit"`
	EstimatedCost float64 `json:"estimated_cost"`
	Justification string  `json:"justification,omitempty"`
}

// TotalEstimatedCost sums quantity x estimated cost across items
func TotalEstimatedCost(items []*IndentItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Quantity * item.EstimatedCost
	}
	return total
}
