package model

// All lists every table the payment core migrates.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Course{},
		&CourseAccess{},
		&Coupon{},
		&CouponUsage{},
		&PaymentRecord{},
		&SubscriptionRecord{},
		&RefundRequest{},
		&SavedCard{},
		&InstructorBalance{},
		&BalanceTransaction{},
		&PayoutProfile{},
		&PayoutRequest{},
	}
}

// PartialIndexes are the indexes GORM tags cannot express. Each statement is valid on
// Postgres and SQLite and safe to re-run.
func PartialIndexes() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_payment_records_pending_created
			ON payment_records (created_at) WHERE status = 'PENDING'`,
		`CREATE INDEX IF NOT EXISTS idx_balance_transactions_unmatured
			ON balance_transactions (created_at) WHERE type = 'CREDIT' AND matured_at IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_subscription_records_one_active
			ON subscription_records (user_id, course_id) WHERE status IN ('PENDING', 'AUTHORIZED', 'PAUSED')`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_saved_cards_one_default
			ON saved_cards (user_id) WHERE is_default`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_refund_requests_one_active
			ON refund_requests (payment_id) WHERE status IN ('PENDING', 'APPROVED', 'PROCESSED')`,
	}
}
