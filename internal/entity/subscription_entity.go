package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SubscriptionStatus string
type FrequencyType string

const (
	SubscriptionStatusPending    SubscriptionStatus = "PENDING"
	SubscriptionStatusAuthorized SubscriptionStatus = "AUTHORIZED"
	SubscriptionStatusPaused     SubscriptionStatus = "PAUSED"
	SubscriptionStatusCancelled  SubscriptionStatus = "CANCELLED"
	SubscriptionStatusFinished   SubscriptionStatus = "FINISHED"

	FrequencyDay   FrequencyType = "day"
	FrequencyWeek  FrequencyType = "week"
	FrequencyMonth FrequencyType = "month"
)

// IsActive covers every state in which a second subscription for the same course is refused.
func (s SubscriptionStatus) IsActive() bool {
	switch s {
	case SubscriptionStatusPending, SubscriptionStatusAuthorized, SubscriptionStatusPaused:
		return true
	}
	return false
}

type SubscriptionRecord struct {
	Id                     uuid.UUID
	UserId                 uuid.UUID
	CourseId               uuid.UUID
	PaymentId              *uuid.UUID
	ExternalSubscriptionId *string
	Status                 SubscriptionStatus
	Frequency              int
	FrequencyType          FrequencyType
	Amount                 decimal.Decimal
	Currency               string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
