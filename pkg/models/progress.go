package model

import "task-tracker.com/task-tracker/pkg/constants"

// ApplyStatusDefaults returns the start and end dates an assignment carries
// once it moves to status. NOT_STARTED clears both dates, IN_PROGRESS and
// COMPLETED fill a missing start or end date with today.
func ApplyStatusDefaults(status constants.AssignmentStatus, start, end *Date, today Date) (*Date, *Date) {
	switch status {
	case constants.StatusNotStarted:
		return nil, nil
	case constants.StatusInProgress:
		if start == nil {
			d := today
			start = &d
		}
	case constants.StatusCompleted:
		if end == nil {
			d := today
			end = &d
		}
	}
	return start, end
}
