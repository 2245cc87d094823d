package dto

import "github.com/google/uuid"

type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Country string `json:"country" validate:"required,max=100"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=500"`
}

type ContactResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}
