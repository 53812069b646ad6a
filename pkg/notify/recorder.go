package notify

import (
	"context"
	"sync"

	"course-marketplace-be/internal/entity"
)

// Recorder is an in-memory Publisher for tests.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
}

type Recorded struct {
	Type string
	Data map[string]interface{}
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) PublishPaymentStatus(ctx context.Context, payment *entity.PaymentRecord, source string) {
	if t := PaymentEventType(payment.Status); t != "" {
		r.add(t, PaymentPayload(payment, source))
	}
}

func (r *Recorder) PublishRefund(ctx context.Context, eventType string, refund *entity.RefundRequest) {
	r.add(eventType, RefundPayload(refund))
}

func (r *Recorder) PublishPayoutRequested(ctx context.Context, payout *entity.PayoutRequest) {
	r.add(EventPayoutRequested, map[string]interface{}{"payout_id": payout.Id.String()})
}

func (r *Recorder) add(t string, data map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Recorded{Type: t, Data: data})
}

func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Recorded(nil), r.events...)
}

// Count returns how many events of eventType were published.
func (r *Recorder) Count(eventType string) int {
	n := 0
	for _, e := range r.Events() {
		if e.Type == eventType {
			n++
		}
	}
	return n
}
