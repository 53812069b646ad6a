package service

import (
	"context"

	"course-marketplace-be/internal/dto"
	"course-marketplace-be/internal/entity"
	"course-marketplace-be/pkg/vault"

	"github.com/google/uuid"
)

type ICardService interface {
	Save(ctx context.Context, userId uuid.UUID, req *dto.SaveCardRequest) (*dto.CardResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.CardResponse, error)
	SetDefault(ctx context.Context, userId, cardId uuid.UUID) (*dto.CardResponse, error)
	Delete(ctx context.Context, userId, cardId uuid.UUID) error
}

type cardService struct {
	vault *vault.Vault
}

func NewCardService(v *vault.Vault) ICardService {
	return &cardService{vault: v}
}

func (s *cardService) Save(ctx context.Context, userId uuid.UUID, req *dto.SaveCardRequest) (*dto.CardResponse, error) {
	card, err := s.vault.Save(ctx, userId, vault.CardInput{
		Number:               req.CardNumber,
		HolderName:           req.CardHolderName,
		ExpirationMonth:      req.ExpirationMonth,
		ExpirationYear:       req.ExpirationYear,
		CVV:                  req.SecurityCode,
		IdentificationType:   req.IdentificationType,
		IdentificationNumber: req.IdentificationNumber,
	})
	if err != nil {
		return nil, err
	}
	return toCardResponse(card), nil
}

func (s *cardService) List(ctx context.Context, userId uuid.UUID) ([]*dto.CardResponse, error) {
	cards, err := s.vault.List(ctx, userId)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.CardResponse, 0, len(cards))
	for _, c := range cards {
		res = append(res, toCardResponse(c))
	}
	return res, nil
}

func (s *cardService) SetDefault(ctx context.Context, userId, cardId uuid.UUID) (*dto.CardResponse, error) {
	card, err := s.vault.SetDefault(ctx, userId, cardId)
	if err != nil {
		return nil, err
	}
	return toCardResponse(card), nil
}

func (s *cardService) Delete(ctx context.Context, userId, cardId uuid.UUID) error {
	return s.vault.Delete(ctx, userId, cardId)
}

func toCardResponse(c *entity.SavedCard) *dto.CardResponse {
	return &dto.CardResponse{
		Id:              c.Id,
		CardHolderName:  c.CardHolderName,
		Last4:           c.Last4,
		Brand:           c.Brand,
		ExpirationMonth: c.ExpirationMonth,
		ExpirationYear:  c.ExpirationYear,
		IsDefault:       c.IsDefault,
		CreatedAt:       c.CreatedAt,
	}
}
