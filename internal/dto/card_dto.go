package dto

import (
	"time"

	"github.com/google/uuid"
)

type SaveCardRequest struct {
	CardNumber           string `json:"card_number" validate:"required,min=12,max=23"`
	CardHolderName       string `json:"card_holder_name" validate:"required"`
	ExpirationMonth      int    `json:"expiration_month" validate:"required,min=1,max=12"`
	ExpirationYear       int    `json:"expiration_year" validate:"required"`
	SecurityCode         string `json:"security_code" validate:"required,min=3,max=4"`
	IdentificationType   string `json:"identification_type,omitempty"`
	IdentificationNumber string `json:"identification_number,omitempty"`
}

type CardResponse struct {
	Id              uuid.UUID `json:"id"`
	CardHolderName  string    `json:"card_holder_name"`
	Last4           string    `json:"last4"`
	Brand           string    `json:"brand"`
	ExpirationMonth int       `json:"expiration_month"`
	ExpirationYear  int       `json:"expiration_year"`
	IsDefault       bool      `json:"is_default"`
	CreatedAt       time.Time `json:"created_at"`
}
