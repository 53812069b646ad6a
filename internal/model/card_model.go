package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SavedCard struct {
	Id                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId               uuid.UUID `gorm:"type:uuid;not null;index"`
	CardHolderName       string    `gorm:"type:varchar(255);not null"`
	Last4                string    `gorm:"type:varchar(4);not null"`
	Brand                string    `gorm:"type:varchar(30);not null"`
	ExpirationMonth      int       `gorm:"not null"`
	ExpirationYear       int       `gorm:"not null"`
	IdentificationType   string    `gorm:"type:varchar(20)"`
	IdentificationNumber string    `gorm:"type:varchar(50)"`
	GatewayCardToken     string    `gorm:"type:varchar(255);not null"`
	IsDefault            bool      `gorm:"not null;default:false"`
	CreatedAt            time.Time `gorm:"autoCreateTime"`
}

func (SavedCard) TableName() string {
	return "saved_cards"
}

func (c *SavedCard) BeforeCreate(tx *gorm.DB) error {
	if c.Id == uuid.Nil {
		c.Id = uuid.New()
	}
	return nil
}
