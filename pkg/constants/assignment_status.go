package constants

import "fmt"

type AssignmentStatus string

const (
	StatusNotStarted AssignmentStatus = "NOT_STARTED"
	StatusInProgress AssignmentStatus = "IN_PROGRESS"
	StatusCompleted  AssignmentStatus = "COMPLETED"
)

func (s AssignmentStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

func ParseAssignmentStatus(s string) (AssignmentStatus, error) {
	status := AssignmentStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown assignment status %q", s)
	}
	return status, nil
}
