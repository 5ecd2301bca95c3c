package models

// DetailResponse is the error payload shape the chat client expects
type DetailResponse struct {
	Detail string `json:"detail"`
}

// HealthCheckResponse returns the health check response struct
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}
