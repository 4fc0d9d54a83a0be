package model

type LoginResponse struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
