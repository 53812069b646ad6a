package vault

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/pkg/apperror"
	"course-marketplace-be/internal/pkg/logger"
	"course-marketplace-be/internal/repository/unitofwork"
	"course-marketplace-be/internal/testutil"
	"course-marketplace-be/pkg/gateway/gatewaytest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestLuhnValid(t *testing.T) {
	tests := []struct {
		number string
		valid  bool
	}{
		{"4111111111111111", true},
		{"5555555555554444", true},
		{"378282246310005", true},
		{"4111111111111112", false},
		{"41111111", false},
		{"4111a11111111111", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, luhnValid(tt.number), tt.number)
	}
}

func TestBrand(t *testing.T) {
	tests := map[string]string{
		"4111111111111111": "visa",
		"5555555555554444": "mastercard",
		"2223003122003222": "mastercard",
		"378282246310005":  "amex",
		"6011111111111117": "discover",
		"6362970000457013": "elo",
		"6062825624254001": "hipercard",
		"9999999999999995": "unknown",
	}
	for number, brand := range tests {
		assert.Equal(t, brand, Brand(number), number)
	}
}

func newVault(t *testing.T) (*Vault, *gatewaytest.Fake) {
	return newVaultOn(t, testutil.NewTestDB(t))
}

func newVaultOn(t *testing.T, db *gorm.DB) (*Vault, *gatewaytest.Fake) {
	fake := gatewaytest.New()
	v := NewVault(unitofwork.NewRepositoryFactory(db), fake, logger.NewNopLogger())
	v.now = func() time.Time { return time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC) }
	return v, fake
}

func card(number string) CardInput {
	return CardInput{
		Number:          number,
		HolderName:      "Ana Souza",
		ExpirationMonth: 12,
		ExpirationYear:  2028,
		CVV:             "123",
	}
}

func TestSave_Validation(t *testing.T) {
	v, _ := newVault(t)
	userId := uuid.New()

	tests := []struct {
		name  string
		input func() CardInput
		code  string
	}{
		{"bad luhn", func() CardInput { return card("4111111111111112") }, "INVALID_CARD_NUMBER"},
		{"missing holder", func() CardInput { c := card("4111111111111111"); c.HolderName = " "; return c }, "INVALID_CARD_HOLDER"},
		{"bad month", func() CardInput { c := card("4111111111111111"); c.ExpirationMonth = 13; return c }, "INVALID_EXPIRATION"},
		{"expired", func() CardInput {
			c := card("4111111111111111")
			c.ExpirationYear, c.ExpirationMonth = 2026, 5
			return c
		}, "CARD_EXPIRED"},
		{"bad cvv", func() CardInput { c := card("4111111111111111"); c.CVV = "12a"; return c }, "INVALID_CVV"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Save(context.Background(), userId, tt.input())
			assert.Equal(t, tt.code, apperror.CodeOf(err))
		})
	}
}

func TestSave_StoresOnlyTokenAndLast4(t *testing.T) {
	v, _ := newVault(t)
	userId := uuid.New()

	saved, err := v.Save(context.Background(), userId, card("4111 1111 1111 1111"))
	require.NoError(t, err)
	assert.Equal(t, "1111", saved.Last4)
	assert.Equal(t, "visa", saved.Brand)
	assert.True(t, saved.IsDefault)
	assert.NotEmpty(t, saved.GatewayCardToken)
	assert.NotContains(t, saved.GatewayCardToken, "4111111111111111")
}

func TestSave_TokenizerFailure(t *testing.T) {
	v, fake := newVault(t)
	fake.TokenErr = errors.New("psp down")

	_, err := v.Save(context.Background(), uuid.New(), card("4111111111111111"))
	assert.True(t, apperror.Is(err, apperror.KindGateway))
}

func TestDefaultCardLifecycle(t *testing.T) {
	v, _ := newVault(t)
	ctx := context.Background()
	userId := uuid.New()

	first, err := v.Save(ctx, userId, card("4111111111111111"))
	require.NoError(t, err)
	second, err := v.Save(ctx, userId, card("5555555555554444"))
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	_, err = v.SetDefault(ctx, userId, second.Id)
	require.NoError(t, err)
	assertDefault(t, v, userId, second.Id)

	_, err = v.SetDefault(ctx, uuid.New(), first.Id)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	require.NoError(t, v.Delete(ctx, userId, second.Id))
	assertDefault(t, v, userId, first.Id)

	require.NoError(t, v.Delete(ctx, userId, first.Id))
	cards, err := v.List(ctx, userId)
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func assertDefault(t *testing.T, v *Vault, userId, want uuid.UUID) {
	t.Helper()
	cards, err := v.List(context.Background(), userId)
	require.NoError(t, err)
	defaults := 0
	for _, c := range cards {
		if c.IsDefault {
			defaults++
			assert.Equal(t, want, c.Id)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestConcurrentFirstSavesLeaveOneDefault(t *testing.T) {
	v, _ := newVaultOn(t, testutil.NewConcurrentTestDB(t))
	ctx := context.Background()
	userId := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := v.Save(ctx, userId, card("4111111111111111"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	cards, err := v.List(ctx, userId)
	require.NoError(t, err)
	assert.Len(t, cards, 6)
	defaults := 0
	for _, c := range cards {
		if c.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestStoreRejectsSecondDefault(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx).CardRepository()
	userId := uuid.New()

	stored := func(userId uuid.UUID) *entity.SavedCard {
		return &entity.SavedCard{
			Id:               uuid.New(),
			UserId:           userId,
			CardHolderName:   "Ana Souza",
			Last4:            "1111",
			Brand:            "visa",
			ExpirationMonth:  12,
			ExpirationYear:   2028,
			GatewayCardToken: "tok",
			IsDefault:        true,
		}
	}

	inserted, err := repo.CreateIfSlotFree(ctx, stored(userId))
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.CreateIfSlotFree(ctx, stored(userId))
	require.NoError(t, err)
	assert.False(t, inserted, "the default slot is already taken")

	assert.Error(t, repo.Create(ctx, stored(userId)))

	inserted, err = repo.CreateIfSlotFree(ctx, stored(uuid.New()))
	require.NoError(t, err)
	assert.True(t, inserted)
}
