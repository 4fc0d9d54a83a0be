package constants

import "testing"

func TestRoleValid(t *testing.T) {
	if !RoleUser.Valid() || !RoleManager.Valid() {
		t.Fatal("expected USER and MANAGER to be valid roles")
	}
	if Role("ADMIN").Valid() {
		t.Fatal("expected ADMIN to be rejected")
	}
	if Role("manager").Valid() {
		t.Fatal("roles are case sensitive")
	}
}

func TestParseAssignmentStatus(t *testing.T) {
	status, err := ParseAssignmentStatus("IN_PROGRESS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != StatusInProgress {
		t.Errorf("expected %s, got %s", StatusInProgress, status)
	}

	if _, err := ParseAssignmentStatus("DONE"); err == nil {
		t.Error("expected error for unknown status")
	}
}
