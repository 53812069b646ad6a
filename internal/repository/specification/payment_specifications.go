package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByExternalReference matches the PSP payment id or, before one is assigned, the order id.
type ByExternalReference struct {
	Reference string
}

func (s ByExternalReference) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("(external_payment_id = ? OR external_order_id = ?)", s.Reference, s.Reference)
}

type ByExternalSubscriptionID struct {
	ExternalID string
}

func (s ByExternalSubscriptionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("external_subscription_id = ?", s.ExternalID)
}

type ByPaymentID struct {
	PaymentID uuid.UUID
}

func (s ByPaymentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("payment_id = ?", s.PaymentID)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

type StatusIn struct {
	Statuses []string
}

func (s StatusIn) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status IN ?", s.Statuses)
}

type CreatedBefore struct {
	Before time.Time
}

func (s CreatedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at <= ?", s.Before)
}

type ByTransactionType struct {
	Type string
}

func (s ByTransactionType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("type = ?", s.Type)
}

// Unmatured selects credits still sitting in the pending bucket.
type Unmatured struct{}

func (s Unmatured) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("matured_at IS NULL")
}

type UpdatedBefore struct {
	Before time.Time
}

func (s UpdatedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("updated_at <= ?", s.Before)
}
