package store

import (
	"sort"

	"task-tracker.com/task-tracker/pkg/constants"
	model "task-tracker.com/task-tracker/pkg/models"
)

const (
	MissingTaskDesignation = "Tâche supprimée"
	UnknownUsername        = "Utilisateur inconnu"
)

// TaskStat is the completion summary of one task.
type TaskStat struct {
	TaskID             string  `json:"taskId"`
	Designation        string  `json:"designation"`
	TotalAssigned      int     `json:"totalAssigned"`
	CompletedCount     int     `json:"completedCount"`
	ProgressPercentage float64 `json:"progressPercentage"`
}

// AssignmentsWithDetails resolves every assignment's task designation and
// username from the snapshot, most recently updated first. Missing
// references fall back to placeholder text.
func AssignmentsWithDetails(s Snapshot) []model.UserTaskDetails {
	out := make([]model.UserTaskDetails, 0, len(s.Assignments))
	if !s.Ready {
		return out
	}

	tasks := make(map[string]string, len(s.Tasks))
	for _, t := range s.Tasks {
		tasks[t.ID] = t.Designation
	}
	users := make(map[string]string, len(s.Users)+1)
	if s.Identity != nil {
		users[s.Identity.ID] = s.Identity.Username
	}
	for _, u := range s.Users {
		users[u.ID] = u.Username
	}

	for _, a := range s.Assignments {
		designation, ok := tasks[a.TaskID]
		if !ok || designation == "" {
			designation = MissingTaskDesignation
		}
		username, ok := users[a.UserID]
		if !ok || username == "" {
			username = UnknownUsername
		}

		out = append(out, model.UserTaskDetails{
			ID:              a.ID,
			UserID:          a.UserID,
			TaskID:          a.TaskID,
			StartDate:       a.StartDate,
			EndDate:         a.EndDate,
			Status:          a.Status,
			Notes:           a.Notes,
			UpdatedAt:       a.UpdatedAt,
			TaskDesignation: designation,
			Username:        username,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// TaskStats returns one entry per task in snapshot order.
func TaskStats(s Snapshot) []TaskStat {
	out := make([]TaskStat, 0, len(s.Tasks))
	if !s.Ready {
		return out
	}

	for _, t := range s.Tasks {
		stat := TaskStat{TaskID: t.ID, Designation: t.Designation}
		for _, a := range s.Assignments {
			if a.TaskID != t.ID {
				continue
			}
			stat.TotalAssigned++
			if a.Status == constants.StatusCompleted {
				stat.CompletedCount++
			}
		}
		if stat.TotalAssigned > 0 {
			stat.ProgressPercentage = float64(stat.CompletedCount) / float64(stat.TotalAssigned) * 100
		}
		out = append(out, stat)
	}
	return out
}
