package domain

import (
	"errors"
	"testing"
)

func TestIsAuthorized(t *testing.T) {
	cases := []struct {
		name    string
		role    Role
		allowed []Role
		want    bool
	}{
		{"client on staff route", RoleClient, StaffRoles, false},
		{"admin on staff route", RoleAdmin, StaffRoles, true},
		{"super admin on staff route", RoleSuperAdmin, StaffRoles, true},
		{"client on client route", RoleClient, []Role{RoleClient}, true},
		{"empty allow-list", RoleAdmin, nil, false},
		{"unknown role", Role("guest"), []Role{Role("guest")}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsAuthorized(tc.role, tc.allowed); got != tc.want {
				t.Fatalf("IsAuthorized(%q) = %v, want %v", tc.role, got, tc.want)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("super_admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != RoleSuperAdmin {
		t.Fatalf("expected super_admin, got %s", r)
	}

	if _, err := ParseRole("root"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestRole_IsStaff(t *testing.T) {
	if RoleClient.IsStaff() {
		t.Fatalf("client must not be staff")
	}
	if !RoleAdmin.IsStaff() || !RoleSuperAdmin.IsStaff() {
		t.Fatalf("admin roles must be staff")
	}
}
