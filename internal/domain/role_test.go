package domain

import "testing"

func TestRoleFromPermissionID(t *testing.T) {
	cases := []struct {
		id   int
		role Role
		ok   bool
	}{
		{1, RoleAdmin, true},
		{2, RoleTeacher, true},
		{3, RoleStudent, true},
		{0, "", false},
		{4, "", false},
	}

	for _, tc := range cases {
		role, ok := RoleFromPermissionID(tc.id)
		if ok != tc.ok || role != tc.role {
			t.Fatalf("RoleFromPermissionID(%d) = %q, %v; want %q, %v", tc.id, role, ok, tc.role, tc.ok)
		}
	}
}

func TestPermissionIDRoundTrip(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleTeacher, RoleStudent} {
		got, ok := RoleFromPermissionID(role.PermissionID())
		if !ok || got != role {
			t.Fatalf("round trip failed for %q", role)
		}
	}
}
