package role

import "testing"

func TestRole_AuthorityRank(t *testing.T) {
	tests := []struct {
		role     Role
		expected int
	}{
		{RoleEmployee, 1},
		{RoleManager, 2},
		{RoleDirector, 2},
		{RoleProcurementOfficer, 3},
		{RoleAdmin, 4},
		{Role("contractor"), 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := tt.role.AuthorityRank(); got != tt.expected {
				t.Errorf("Role.AuthorityRank() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRole_Subsumes(t *testing.T) {
	tests := []struct {
		name     string
		actor    Role
		required Role
		expected bool
	}{
		{"admin subsumes everyone", RoleAdmin, RoleProcurementOfficer, true},
		{"procurement officer subsumes manager", RoleProcurementOfficer, RoleManager, true},
		{"manager subsumes itself", RoleManager, RoleManager, true},
		{"director acts at manager tier", RoleDirector, RoleManager, true},
		{"director does not reach procurement tier", RoleDirector, RoleProcurementOfficer, false},
		{"employee does not subsume manager", RoleEmployee, RoleManager, false},
		{"unknown role subsumes nothing", Role("contractor"), RoleEmployee, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.actor.Subsumes(tt.required); got != tt.expected {
				t.Errorf("Subsumes(%s, %s) = %v, want %v", tt.actor, tt.required, got, tt.expected)
			}
		})
	}
}

func TestParse(t *testing.T) {
	r, err := Parse("manager")
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if r != RoleManager {
		t.Errorf("Parse() = %v, want %v", r, RoleManager)
	}

	if _, err := Parse("superuser"); err == nil {
		t.Error("Parse() should reject unknown roles")
	}
}
