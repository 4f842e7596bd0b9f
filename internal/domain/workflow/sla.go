package workflow

import (
	"time"

	"github.com/garyjia/procure-indent/internal/domain/role"
)

// DefaultSLAHours is the stage-role to response-window table, in hours
var DefaultSLAHours = map[role.Role]int{
	role.RoleManager:            24,
	role.RoleDirector:           48,
	role.RoleProcurementOfficer: 72,
}

const fallbackSLAHours = 24

// SLAClock computes stage deadlines and breach status
type SLAClock struct {
	hours map[role.Role]int
}

// NewSLAClock creates an SLA clock; nil hours uses the default table
func NewSLAClock(hours map[role.Role]int) *SLAClock {
	if hours == nil {
		hours = DefaultSLAHours
	}
	return &SLAClock{hours: hours}
}

// DeadlineFor returns the time by which the stage's approver must act,
// measured from the reference time
func (c *SLAClock) DeadlineFor(stage ApprovalStage, reference time.Time) time.Time {
	hours, ok := c.hours[stage.Role]
	if !ok {
		hours = fallbackSLAHours
	}
	return reference.Add(time.Duration(hours) * time.Hour)
}

// IsBreached reports whether now is strictly past the deadline. Acting at
// exactly the deadline is not a breach.
func (c *SLAClock) IsBreached(deadline, now time.Time) bool {
	return now.After(deadline)
}
