package service

import (
	"context"
	"strings"
	"time"

	"course-marketplace-be/internal/dto"
	"course-marketplace-be/internal/entity"
	"course-marketplace-be/internal/pkg/apperror"
	"course-marketplace-be/internal/pkg/logger"
	"course-marketplace-be/internal/repository/contract"
	"course-marketplace-be/internal/repository/specification"
	"course-marketplace-be/internal/repository/unitofwork"
	"course-marketplace-be/pkg/gateway"
	"course-marketplace-be/pkg/pricing"
	"course-marketplace-be/pkg/reconcile"
	"course-marketplace-be/pkg/vault"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundredPercent = decimal.NewFromInt(100)

type IPaymentService interface {
	Quote(ctx context.Context, userId, courseId uuid.UUID, couponCode string) (*dto.QuoteResponse, error)
	Checkout(ctx context.Context, userId uuid.UUID, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	GetPayment(ctx context.Context, userId, paymentId uuid.UUID) (*dto.PaymentResponse, error)
	ListPayments(ctx context.Context, userId uuid.UUID, page, size int) ([]*dto.PaymentResponse, error)
	CancelSubscription(ctx context.Context, userId, subscriptionId uuid.UUID) (*dto.SubscriptionResponse, error)

	AdminOverride(ctx context.Context, paymentId uuid.UUID, req *dto.AdminOverrideRequest) (*dto.PaymentResponse, error)
	CreateCoupon(ctx context.Context, req *dto.CreateCouponRequest) (*dto.CouponResponse, error)
	ListCoupons(ctx context.Context, page, size int) ([]*dto.CouponResponse, error)
}

// PaymentWatcher keeps polling a payment the PSP left pending at checkout.
type PaymentWatcher interface {
	Watch(ctx context.Context, paymentId uuid.UUID)
}

type paymentService struct {
	uowFactory      unitofwork.RepositoryFactory
	courses         contract.CourseRepository
	gateway         gateway.Gateway
	calculator      *pricing.Calculator
	engine          *reconcile.Engine
	watcher         PaymentWatcher
	cards           *vault.Vault
	defaultCurrency string
	logger          logger.ILogger
	now             func() time.Time
}

func NewPaymentService(
	uowFactory unitofwork.RepositoryFactory,
	courses contract.CourseRepository,
	gw gateway.Gateway,
	calculator *pricing.Calculator,
	engine *reconcile.Engine,
	watcher PaymentWatcher,
	cards *vault.Vault,
	defaultCurrency string,
	log logger.ILogger,
) IPaymentService {
	return &paymentService{
		uowFactory:      uowFactory,
		courses:         courses,
		gateway:         gw,
		calculator:      calculator,
		engine:          engine,
		watcher:         watcher,
		cards:           cards,
		defaultCurrency: defaultCurrency,
		logger:          log,
		now:             time.Now,
	}
}

func (s *paymentService) Quote(ctx context.Context, userId, courseId uuid.UUID, couponCode string) (*dto.QuoteResponse, error) {
	course, err := s.loadCourse(ctx, courseId)
	if err != nil {
		return nil, err
	}

	res := &dto.QuoteResponse{
		CourseId:    course.Id,
		CourseTitle: course.Title,
		Currency:    s.currencyOf(course),
	}

	var coupon *entity.Coupon
	if code := entity.NormalizeCouponCode(couponCode); code != "" {
		res.CouponCode = code
		found, check, err := s.checkCoupon(ctx, userId, code)
		if err != nil {
			return nil, err
		}
		valid := check.Valid
		res.CouponValid = &valid
		res.CouponMessage = check.Message()
		if check.Valid {
			coupon = found
		}
	}

	b := s.calculator.Calculate(course.Price, coupon, s.currencyOf(course))
	res.OriginalPrice = b.OriginalPrice
	res.Discount = b.Discount
	res.Total = b.Total()
	res.PlatformFee = b.PlatformFee
	res.InstructorAmount = b.InstructorAmount
	return res, nil
}

func (s *paymentService) Checkout(ctx context.Context, userId uuid.UUID, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	method := entity.PaymentMethod(req.PaymentMethod)
	if !method.IsValid() {
		return nil, apperror.Validation("INVALID_PAYMENT_METHOD", "unsupported payment method")
	}
	paymentType := entity.PaymentTypeOneTime
	if req.PaymentType != "" {
		paymentType = entity.PaymentType(req.PaymentType)
	}
	if paymentType == entity.PaymentTypeSubscription && !method.IsCard() {
		return nil, apperror.Validation("SUBSCRIPTION_REQUIRES_CARD", "subscriptions can only be paid by card")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindById(ctx, userId)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("USER_NOT_FOUND", "user not found", entity.ErrUserNotFound)
	}
	if !user.IsActive {
		return nil, apperror.Forbidden("USER_INACTIVE", "account is not active")
	}

	course, err := s.loadCourse(ctx, req.CourseId)
	if err != nil {
		return nil, err
	}
	if course.InstructorId == userId {
		return nil, apperror.Ineligible("OWN_COURSE", "instructors cannot buy their own course")
	}

	enrolled, err := uow.EnrollmentRepository().Exists(ctx, userId, course.Id)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, apperror.Ineligible("ALREADY_ENROLLED", "you already have access to this course")
	}

	if paymentType == entity.PaymentTypeSubscription {
		active, err := uow.SubscriptionRepository().FindOne(ctx,
			specification.UserOwnedBy{UserID: userId},
			specification.ByCourseID{CourseID: course.Id},
			specification.StatusIn{Statuses: []string{
				string(entity.SubscriptionStatusPending),
				string(entity.SubscriptionStatusAuthorized),
				string(entity.SubscriptionStatusPaused),
			}},
		)
		if err != nil {
			return nil, err
		}
		if active != nil {
			return nil, apperror.Ineligible("SUBSCRIPTION_ALREADY_ACTIVE", "an active subscription for this course already exists")
		}
	}

	var coupon *entity.Coupon
	if code := entity.NormalizeCouponCode(req.CouponCode); code != "" {
		found, check, err := s.checkCoupon(ctx, userId, code)
		if err != nil {
			return nil, err
		}
		if !check.Valid {
			return nil, apperror.Ineligible("COUPON_"+strings.ToUpper(string(check.Reason)), check.Message())
		}
		coupon = found
	}

	breakdown := s.calculator.Calculate(course.Price, coupon, s.currencyOf(course))
	if !breakdown.Total().IsPositive() {
		return nil, apperror.Ineligible("NOTHING_TO_CHARGE", "the discounted price is zero")
	}

	cardToken, err := s.resolveCardToken(ctx, userId, method, req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	currency := s.currencyOf(course)
	payment := &entity.PaymentRecord{
		Id:                uuid.New(),
		UserId:            userId,
		CourseId:          course.Id,
		InstructorId:      course.InstructorId,
		Amount:            breakdown.Total(),
		OriginalAmount:    breakdown.OriginalPrice,
		DiscountAmount:    breakdown.Discount,
		Currency:          currency,
		Status:            entity.PaymentStatusPending,
		PaymentType:       paymentType,
		PaymentMethod:     method,
		PlatformFeeAmount: breakdown.PlatformFee,
		InstructorAmount:  breakdown.InstructorAmount,
		GatewayProvider:   s.gateway.Name(),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if coupon != nil {
		payment.CouponId = &coupon.Id
	}
	payer := payerOf(user)

	var (
		subscription *entity.SubscriptionRecord
		reported     gateway.StandardStatus
	)

	if paymentType == entity.PaymentTypeSubscription {
		subscription = &entity.SubscriptionRecord{
			Id:            uuid.New(),
			UserId:        userId,
			CourseId:      course.Id,
			PaymentId:     &payment.Id,
			Status:        entity.SubscriptionStatusPending,
			Frequency:     req.Frequency,
			FrequencyType: entity.FrequencyType(req.FrequencyType),
			Amount:        payment.Amount,
			Currency:      currency,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if subscription.Frequency == 0 {
			subscription.Frequency = 1
		}
		if subscription.FrequencyType == "" {
			subscription.FrequencyType = entity.FrequencyMonth
		}

		res, err := s.gateway.CreateSubscription(ctx, gateway.SubscriptionRequest{
			OrderId:       payment.Id.String(),
			Reason:        course.Title,
			Amount:        payment.Amount,
			Currency:      currency,
			Frequency:     subscription.Frequency,
			FrequencyType: string(subscription.FrequencyType),
			CardToken:     cardToken,
			StartAt:       now,
			Payer:         payer,
		})
		if err != nil {
			return nil, s.gatewayFailure("CreateSubscription", payment, err)
		}
		subscription.ExternalSubscriptionId = &res.ExternalId
		payment.SubscriptionId = &subscription.Id
		payment.ExternalOrderId = &res.ExternalId
		payment.GatewayPayload = res.Payload
		reported = res.Status
	} else {
		orderId := payment.Id.String()
		res, err := s.gateway.CreatePayment(ctx, gateway.PaymentRequest{
			OrderId:     orderId,
			Amount:      payment.Amount,
			Currency:    currency,
			Method:      gateway.Method(method),
			CardToken:   cardToken,
			Description: course.Title,
			ItemId:      course.Id.String(),
			Payer:       payer,
		})
		if err != nil {
			return nil, s.gatewayFailure("CreatePayment", payment, err)
		}
		payment.ExternalOrderId = &orderId
		if res.ExternalId != "" {
			payment.ExternalPaymentId = &res.ExternalId
		}
		payment.GatewayPayload = res.Payload
		reported = res.Status
	}

	if err := s.persist(ctx, payment, subscription); err != nil {
		s.logger.Error("PAYMENT_SERVICE", "Gateway accepted a payment that could not be stored", map[string]interface{}{
			"payment_id":  payment.Id.String(),
			"external_id": payment.GatewayReference(),
			"error":       err.Error(),
		})
		return nil, err
	}

	s.logger.Info("PAYMENT_SERVICE", "Checkout created", map[string]interface{}{
		"payment_id": payment.Id.String(),
		"type":       string(paymentType),
		"method":     string(method),
		"amount":     payment.Amount.StringFixed(2),
		"reported":   string(reported),
	})

	status := payment.Status
	if reported != gateway.StatusPending {
		out, err := s.engine.Reconcile(ctx, reconcile.Trigger{
			Source:    reconcile.SourceCheckout,
			PaymentId: payment.Id,
			Status:    reported,
			Reason:    "checkout: " + string(reported),
		})
		if err != nil {
			s.logger.Warn("PAYMENT_SERVICE", "Immediate reconciliation failed, polling instead", map[string]interface{}{
				"payment_id": payment.Id.String(),
				"error":      err.Error(),
			})
		} else {
			status = out.Payment.Status
		}
	}
	if !status.IsTerminal() && s.watcher != nil {
		s.watcher.Watch(context.WithoutCancel(ctx), payment.Id)
	}

	res := &dto.CheckoutResponse{
		PaymentId: payment.Id,
		OrderId:   *payment.ExternalOrderId,
		Status:    string(status),
		Amount:    payment.Amount,
		Currency:  currency,
	}
	if subscription != nil {
		res.SubscriptionId = &subscription.Id
	}
	return res, nil
}

func (s *paymentService) persist(ctx context.Context, payment *entity.PaymentRecord, subscription *entity.SubscriptionRecord) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if subscription != nil {
		if err := uow.SubscriptionRepository().Create(ctx, subscription); err != nil {
			return err
		}
	}
	if err := uow.PaymentRepository().Create(ctx, payment); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *paymentService) GetPayment(ctx context.Context, userId, paymentId uuid.UUID) (*dto.PaymentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	owned, err := uow.PaymentRepository().FindOne(ctx,
		specification.ByID{ID: paymentId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if owned == nil {
		return nil, apperror.NotFound("PAYMENT_NOT_FOUND", "payment not found", entity.ErrPaymentNotFound)
	}

	res, err := s.engine.Poll(ctx, paymentId)
	if err != nil {
		return nil, err
	}
	out := toPaymentResponse(res.Payment)
	out.Stale = res.Stale
	return out, nil
}

func (s *paymentService) ListPayments(ctx context.Context, userId uuid.UUID, page, size int) ([]*dto.PaymentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	payments, err := uow.PaymentRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.Page(page, size),
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		res = append(res, toPaymentResponse(p))
	}
	return res, nil
}

func (s *paymentService) CancelSubscription(ctx context.Context, userId, subscriptionId uuid.UUID) (*dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sub, err := uow.SubscriptionRepository().FindOne(ctx,
		specification.ByID{ID: subscriptionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperror.NotFound("SUBSCRIPTION_NOT_FOUND", "subscription not found", entity.ErrSubscriptionNotFound)
	}
	if !sub.Status.IsActive() {
		return nil, apperror.Ineligible("SUBSCRIPTION_NOT_ACTIVE", "subscription is not active")
	}

	if sub.ExternalSubscriptionId != nil && *sub.ExternalSubscriptionId != "" {
		if err := s.gateway.CancelSubscription(ctx, *sub.ExternalSubscriptionId); err != nil {
			return nil, apperror.Gateway("payment provider could not cancel the subscription", err)
		}
	}

	ok, err := uow.SubscriptionRepository().CompareAndSetStatus(ctx, sub.Id,
		[]entity.SubscriptionStatus{entity.SubscriptionStatusPending, entity.SubscriptionStatusAuthorized, entity.SubscriptionStatusPaused},
		entity.SubscriptionStatusCancelled,
	)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.Ineligible("SUBSCRIPTION_NOT_ACTIVE", "subscription is not active")
	}
	sub.Status = entity.SubscriptionStatusCancelled

	s.logger.Info("PAYMENT_SERVICE", "Subscription cancelled", map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"user_id":         userId.String(),
	})
	return toSubscriptionResponse(sub), nil
}

func (s *paymentService) AdminOverride(ctx context.Context, paymentId uuid.UUID, req *dto.AdminOverrideRequest) (*dto.PaymentResponse, error) {
	out, err := s.engine.AdminOverride(ctx, paymentId, gateway.StandardStatus(req.Status), req.Reason)
	if err != nil {
		return nil, err
	}
	return toPaymentResponse(out.Payment), nil
}

func (s *paymentService) CreateCoupon(ctx context.Context, req *dto.CreateCouponRequest) (*dto.CouponResponse, error) {
	code := entity.NormalizeCouponCode(req.Code)
	discountType := entity.DiscountType(req.DiscountType)

	if !req.DiscountValue.IsPositive() {
		return nil, apperror.Validation("INVALID_DISCOUNT", "discount value must be positive")
	}
	if discountType == entity.DiscountTypePercentage && req.DiscountValue.GreaterThan(hundredPercent) {
		return nil, apperror.Validation("INVALID_DISCOUNT", "percentage discount cannot exceed 100")
	}

	now := s.now()
	validFrom := now
	if req.ValidFrom != nil {
		validFrom = *req.ValidFrom
	}
	if req.ValidUntil != nil && !req.ValidUntil.After(validFrom) {
		return nil, apperror.Validation("INVALID_VALIDITY", "valid_until must be after valid_from")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.CouponRepository().FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Conflict("COUPON_CODE_TAKEN", "coupon code already exists", nil)
	}

	coupon := &entity.Coupon{
		Id:            uuid.New(),
		Code:          code,
		DiscountType:  discountType,
		DiscountValue: req.DiscountValue,
		ValidFrom:     validFrom,
		ValidUntil:    req.ValidUntil,
		MaxUses:       req.MaxUses,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uow.CouponRepository().Create(ctx, coupon); err != nil {
		return nil, err
	}
	return toCouponResponse(coupon), nil
}

func (s *paymentService) ListCoupons(ctx context.Context, page, size int) ([]*dto.CouponResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	coupons, err := uow.CouponRepository().FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Page(page, size),
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.CouponResponse, 0, len(coupons))
	for _, c := range coupons {
		res = append(res, toCouponResponse(c))
	}
	return res, nil
}

func (s *paymentService) loadCourse(ctx context.Context, courseId uuid.UUID) (*entity.Course, error) {
	course, err := s.courses.FindById(ctx, courseId)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, apperror.NotFound("COURSE_NOT_FOUND", "course not found", entity.ErrCourseNotFound)
	}
	return course, nil
}

func (s *paymentService) checkCoupon(ctx context.Context, userId uuid.UUID, code string) (*entity.Coupon, pricing.CouponCheck, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	coupon, err := uow.CouponRepository().FindByCode(ctx, code)
	if err != nil {
		return nil, pricing.CouponCheck{}, err
	}

	redeemed := false
	if coupon != nil {
		if redeemed, err = uow.CouponRepository().HasUsage(ctx, coupon.Id, userId); err != nil {
			return nil, pricing.CouponCheck{}, err
		}
	}
	return coupon, pricing.ValidateCoupon(coupon, redeemed, s.now()), nil
}

func (s *paymentService) resolveCardToken(ctx context.Context, userId uuid.UUID, method entity.PaymentMethod, req *dto.CheckoutRequest) (string, error) {
	if !method.IsCard() {
		return "", nil
	}
	if req.CardId != nil {
		card, err := s.cards.Get(ctx, userId, *req.CardId)
		if err != nil {
			return "", err
		}
		return card.GatewayCardToken, nil
	}
	if req.CardToken == "" {
		return "", apperror.Validation("CARD_REQUIRED", "card_id or card_token is required for card payments")
	}
	return req.CardToken, nil
}

func (s *paymentService) currencyOf(course *entity.Course) string {
	if course.Currency != "" {
		return course.Currency
	}
	return s.defaultCurrency
}

func (s *paymentService) gatewayFailure(op string, payment *entity.PaymentRecord, err error) error {
	s.logger.Error("PAYMENT_SERVICE", "Gateway "+op+" failed", map[string]interface{}{
		"payment_id": payment.Id.String(),
		"provider":   s.gateway.Name(),
		"error":      err.Error(),
	})
	return apperror.Gateway("payment provider rejected the request", err)
}

func payerOf(user *entity.User) gateway.Payer {
	first, last, _ := strings.Cut(strings.TrimSpace(user.FullName), " ")
	return gateway.Payer{Email: user.Email, FirstName: first, LastName: last}
}

func toPaymentResponse(p *entity.PaymentRecord) *dto.PaymentResponse {
	return &dto.PaymentResponse{
		Id:                p.Id,
		CourseId:          p.CourseId,
		SubscriptionId:    p.SubscriptionId,
		Status:            string(p.Status),
		PaymentType:       string(p.PaymentType),
		PaymentMethod:     string(p.PaymentMethod),
		Amount:            p.Amount,
		OriginalAmount:    p.OriginalAmount,
		DiscountAmount:    p.DiscountAmount,
		Currency:          p.Currency,
		GatewayProvider:   p.GatewayProvider,
		ExternalPaymentId: p.ExternalPaymentId,
		StatusReason:      p.StatusReason,
		CompletedAt:       p.CompletedAt,
		CreatedAt:         p.CreatedAt,
	}
}

func toSubscriptionResponse(s *entity.SubscriptionRecord) *dto.SubscriptionResponse {
	return &dto.SubscriptionResponse{
		Id:            s.Id,
		CourseId:      s.CourseId,
		Status:        string(s.Status),
		Frequency:     s.Frequency,
		FrequencyType: string(s.FrequencyType),
	}
}

func toCouponResponse(c *entity.Coupon) *dto.CouponResponse {
	return &dto.CouponResponse{
		Id:            c.Id,
		Code:          c.Code,
		DiscountType:  string(c.DiscountType),
		DiscountValue: c.DiscountValue,
		ValidFrom:     c.ValidFrom,
		ValidUntil:    c.ValidUntil,
		MaxUses:       c.MaxUses,
		UsedCount:     c.UsedCount,
		IsActive:      c.IsActive,
	}
}
