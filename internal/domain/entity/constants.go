package entity

// Status constants for Indent
const (
	StatusPending             = "PENDING"
	StatusApproved            = "APPROVED"
	StatusProcurementApproved = "PROCUREMENT_APPROVED"
	StatusPOCreated           = "PO_CREATED"
	StatusCompleted           = "COMPLETED"
	StatusRejected            = "REJECTED"
)

// Priority constants for Indent
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// Decision constants for Approval
const (
	DecisionApproved = "APPROVED"
	DecisionRejected = "REJECTED"
)

// Status constants for PurchaseOrder
const (
	POStatusIssued    = "ISSUED"
	POStatusAccepted  = "ACCEPTED"
	POStatusShipped   = "SHIPPED"
	POStatusDelivered = "DELIVERED"
	POStatusCancelled = "CANCELLED"
)

// Notification type constants
const (
	NotificationIndentStatus     = "INDENT_STATUS"
	NotificationApprovalRequired = "APPROVAL_REQUIRED"
	NotificationSLABreach        = "SLA_BREACH"
	NotificationPOCreated        = "PO_CREATED"
)
