package dto

// HealthDTO represents a data transfer object (DTO) for the health check response.
type HealthDTO struct {
	Status string `json:"status"`
}
