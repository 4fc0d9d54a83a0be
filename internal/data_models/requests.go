package dto

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type CreateTaskRequest struct {
	Designation string `json:"designation"`
}

type AssignTaskRequest struct {
	UserID string `json:"userId"`
	TaskID string `json:"taskId"`
}

// UpdateUserTaskRequest fields are optional. Empty strings count as absent.
type UpdateUserTaskRequest struct {
	Status    string `json:"status"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Notes     string `json:"notes"`
}
