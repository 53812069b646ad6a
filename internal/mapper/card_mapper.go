package mapper

import (
	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/model"
)

type CardMapper struct{}

func NewCardMapper() *CardMapper {
	return &CardMapper{}
}

func (m *CardMapper) ToEntity(c *model.SavedCard) *entity.SavedCard {
	if c == nil {
		return nil
	}
	return &entity.SavedCard{
		Id:                   c.Id,
		UserId:               c.UserId,
		CardHolderName:       c.CardHolderName,
		Last4:                c.Last4,
		Brand:                c.Brand,
		ExpirationMonth:      c.ExpirationMonth,
		ExpirationYear:       c.ExpirationYear,
		IdentificationType:   c.IdentificationType,
		IdentificationNumber: c.IdentificationNumber,
		GatewayCardToken:     c.GatewayCardToken,
		IsDefault:            c.IsDefault,
		CreatedAt:            c.CreatedAt,
	}
}

func (m *CardMapper) ToModel(c *entity.SavedCard) *model.SavedCard {
	if c == nil {
		return nil
	}
	return &model.SavedCard{
		Id:                   c.Id,
		UserId:               c.UserId,
		CardHolderName:       c.CardHolderName,
		Last4:                c.Last4,
		Brand:                c.Brand,
		ExpirationMonth:      c.ExpirationMonth,
		ExpirationYear:       c.ExpirationYear,
		IdentificationType:   c.IdentificationType,
		IdentificationNumber: c.IdentificationNumber,
		GatewayCardToken:     c.GatewayCardToken,
		IsDefault:            c.IsDefault,
		CreatedAt:            c.CreatedAt,
	}
}
