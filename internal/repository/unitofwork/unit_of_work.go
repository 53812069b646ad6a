package unitofwork

import (
	"context"

	"course-marketplace-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	PaymentRepository() contract.PaymentRepository
	SubscriptionRepository() contract.SubscriptionRepository
	CouponRepository() contract.CouponRepository
	RefundRepository() contract.RefundRepository
	CardRepository() contract.CardRepository
	LedgerRepository() contract.LedgerRepository
	EnrollmentRepository() contract.EnrollmentRepository
	CourseRepository() contract.CourseRepository
	UserRepository() contract.UserRepository
}
