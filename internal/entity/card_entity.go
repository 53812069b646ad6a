package entity

import (
	"time"

	"github.com/google/uuid"
)

// SavedCard never carries the PAN or CVV, only what a repeat purchase needs.
type SavedCard struct {
	Id                   uuid.UUID
	UserId               uuid.UUID
	CardHolderName       string
	Last4                string
	Brand                string
	ExpirationMonth      int
	ExpirationYear       int
	IdentificationType   string
	IdentificationNumber string
	GatewayCardToken     string
	IsDefault            bool
	CreatedAt            time.Time
}
