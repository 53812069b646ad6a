// Package vault stores tokenized cards for one-click repeat purchases.
// The PAN and CVV are handed to the PSP and never persisted.
package vault

import (
	"context"
	"fmt"
	"strings"
	"time"

	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/pkg/apperror"
	"course-marketplace-be/internal/pkg/logger"
	"course-marketplace-be/internal/repository/specification"
	"course-marketplace-be/internal/repository/unitofwork"
	"course-marketplace-be/pkg/gateway"

	"github.com/google/uuid"
)

type CardInput struct {
	Number               string
	HolderName           string
	ExpirationMonth      int
	ExpirationYear       int
	CVV                  string
	IdentificationType   string
	IdentificationNumber string
}

type Vault struct {
	uowFactory unitofwork.RepositoryFactory
	tokenizer  gateway.Tokenizer
	logger     logger.ILogger
	now        func() time.Time
}

func NewVault(uowFactory unitofwork.RepositoryFactory, tokenizer gateway.Tokenizer, log logger.ILogger) *Vault {
	return &Vault{
		uowFactory: uowFactory,
		tokenizer:  tokenizer,
		logger:     log,
		now:        time.Now,
	}
}

func (v *Vault) Save(ctx context.Context, userId uuid.UUID, input CardInput) (*entity.SavedCard, error) {
	number := sanitizeNumber(input.Number)
	if err := v.validate(number, input); err != nil {
		return nil, err
	}

	token, err := v.tokenizer.TokenizeCard(ctx, gateway.CardDetails{
		Number:   number,
		ExpMonth: input.ExpirationMonth,
		ExpYear:  input.ExpirationYear,
		CVV:      input.CVV,
	})
	if err != nil {
		return nil, apperror.Gateway("card could not be tokenized", err)
	}

	card := &entity.SavedCard{
		Id:                   uuid.New(),
		UserId:               userId,
		CardHolderName:       strings.TrimSpace(input.HolderName),
		Last4:                number[len(number)-4:],
		Brand:                Brand(number),
		ExpirationMonth:      input.ExpirationMonth,
		ExpirationYear:       input.ExpirationYear,
		IdentificationType:   input.IdentificationType,
		IdentificationNumber: input.IdentificationNumber,
		GatewayCardToken:     token,
	}
	if err := v.insert(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to save card: %w", err)
	}

	v.logger.Info("VAULT", "Card saved", map[string]interface{}{
		"user_id": userId.String(),
		"card_id": card.Id.String(),
		"brand":   card.Brand,
		"last4":   card.Last4,
	})
	return card, nil
}

// insert stores the card as default when the user has none. Two concurrent first saves
// race on idx_saved_cards_one_default; the loser is stored as a regular card.
func (v *Vault) insert(ctx context.Context, card *entity.SavedCard) error {
	uow := v.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	repo := uow.CardRepository()
	existing, err := repo.FindAll(ctx, specification.UserOwnedBy{UserID: card.UserId}, specification.ForUpdate{})
	if err != nil {
		return err
	}

	card.IsDefault = defaultOf(existing) == nil
	if card.IsDefault {
		inserted, err := repo.CreateIfSlotFree(ctx, card)
		if err != nil {
			return err
		}
		if !inserted {
			card.IsDefault = false
			if err := repo.Create(ctx, card); err != nil {
				return err
			}
		}
	} else if err := repo.Create(ctx, card); err != nil {
		return err
	}
	return uow.Commit()
}

func defaultOf(cards []*entity.SavedCard) *entity.SavedCard {
	for _, c := range cards {
		if c.IsDefault {
			return c
		}
	}
	return nil
}

func (v *Vault) validate(number string, input CardInput) error {
	if !luhnValid(number) {
		return apperror.Validation("INVALID_CARD_NUMBER", "card number is invalid")
	}
	if strings.TrimSpace(input.HolderName) == "" {
		return apperror.Validation("INVALID_CARD_HOLDER", "card holder name is required")
	}
	if input.ExpirationMonth < 1 || input.ExpirationMonth > 12 {
		return apperror.Validation("INVALID_EXPIRATION", "expiration month must be between 1 and 12")
	}
	now := v.now()
	if input.ExpirationYear < now.Year() || (input.ExpirationYear == now.Year() && input.ExpirationMonth < int(now.Month())) {
		return apperror.Validation("CARD_EXPIRED", "card is expired")
	}
	if l := len(input.CVV); l < 3 || l > 4 || strings.Trim(input.CVV, "0123456789") != "" {
		return apperror.Validation("INVALID_CVV", "security code is invalid")
	}
	return nil
}

// Get returns a card only to its owner.
func (v *Vault) Get(ctx context.Context, userId, cardId uuid.UUID) (*entity.SavedCard, error) {
	card, err := v.uowFactory.NewUnitOfWork(ctx).CardRepository().FindOne(ctx,
		specification.ByID{ID: cardId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, apperror.NotFound("CARD_NOT_FOUND", "card not found", entity.ErrCardNotFound)
	}
	return card, nil
}

func (v *Vault) List(ctx context.Context, userId uuid.UUID) ([]*entity.SavedCard, error) {
	return v.uowFactory.NewUnitOfWork(ctx).CardRepository().FindAll(ctx, specification.UserOwnedBy{UserID: userId})
}

// SetDefault makes cardId the only default card of the user. The user's cards stay
// locked from the clear to the mark, so concurrent calls apply one after the other.
func (v *Vault) SetDefault(ctx context.Context, userId, cardId uuid.UUID) (*entity.SavedCard, error) {
	uow := v.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	repo := uow.CardRepository()
	cards, err := repo.FindAll(ctx, specification.UserOwnedBy{UserID: userId}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	card := findCard(cards, cardId)
	if card == nil {
		return nil, apperror.NotFound("CARD_NOT_FOUND", "card not found", entity.ErrCardNotFound)
	}

	if err := repo.ClearDefault(ctx, userId); err != nil {
		return nil, err
	}
	if err := repo.MarkDefault(ctx, card.Id); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	card.IsDefault = true
	return card, nil
}

// Delete removes a card. Deleting the default promotes the most recently added remaining card.
func (v *Vault) Delete(ctx context.Context, userId, cardId uuid.UUID) error {
	uow := v.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	repo := uow.CardRepository()
	cards, err := repo.FindAll(ctx, specification.UserOwnedBy{UserID: userId}, specification.ForUpdate{})
	if err != nil {
		return err
	}
	card := findCard(cards, cardId)
	if card == nil {
		return apperror.NotFound("CARD_NOT_FOUND", "card not found", entity.ErrCardNotFound)
	}

	if err := repo.Delete(ctx, card.Id); err != nil {
		return err
	}

	if card.IsDefault {
		// cards is newest first
		for _, c := range cards {
			if c.Id != card.Id {
				if err := repo.MarkDefault(ctx, c.Id); err != nil {
					return err
				}
				break
			}
		}
	}
	return uow.Commit()
}

func findCard(cards []*entity.SavedCard, id uuid.UUID) *entity.SavedCard {
	for _, c := range cards {
		if c.Id == id {
			return c
		}
	}
	return nil
}
