package dto

type MessageResponseDTO struct {
	Message string `json:"message"`
}

type HealthResponseDTO struct {
	Status string `json:"status"`
}

type AdminContactResponseDTO struct {
	TelegramURL string `json:"telegram_url"`
}
