package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"course-marketplace-be/internal/config"
	"course-marketplace-be/internal/controller"
	"course-marketplace-be/internal/handler"
	"course-marketplace-be/internal/pkg/logger"
	"course-marketplace-be/internal/pkg/mailer"
	"course-marketplace-be/internal/pkg/serverutils"
	"course-marketplace-be/internal/repository/implementation"
	"course-marketplace-be/internal/repository/memory"
	"course-marketplace-be/internal/repository/unitofwork"
	"course-marketplace-be/internal/scheduler"
	"course-marketplace-be/internal/service"
	"course-marketplace-be/internal/websocket"
	"course-marketplace-be/pkg/gateway"
	"course-marketplace-be/pkg/gateway/factory"
	"course-marketplace-be/pkg/ledger"
	pktNats "course-marketplace-be/pkg/nats"
	"course-marketplace-be/pkg/notify"
	"course-marketplace-be/pkg/pricing"
	"course-marketplace-be/pkg/reconcile"
	"course-marketplace-be/pkg/refund"
	"course-marketplace-be/pkg/vault"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const courseCacheTTL = 5 * time.Minute

type Container struct {
	// Controllers
	WebhookController    controller.IWebhookController
	PaymentController    controller.IPaymentController
	RefundController     controller.IRefundController
	CardController       controller.ICardController
	InstructorController controller.IInstructorController
	AdminController      controller.IAdminController

	// Background Services (Exposed for main.go to run)
	ConsumerService     service.IConsumerService
	NotificationService *service.NotificationService
	Scheduler           *scheduler.Scheduler

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	Logger *logger.ZapLogger

	pubSub  *gochannel.GoChannel
	rdb     *redis.Client
	natsPub *pktNats.Publisher
	natsSub *pktNats.Subscriber
}

// NewContainer wires every component. A misconfigured payment gateway is fatal;
// NATS and Redis outages only degrade notifications and poll throttling.
func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	gw, err := factory.NewGateway(cfg.Payment)
	if err != nil {
		return nil, err
	}
	tokenizer, ok := gw.(gateway.Tokenizer)
	if !ok {
		return nil, fmt.Errorf("%w: %s cannot tokenize cards", factory.ErrGatewayNotConfigured, gw.Name())
	}

	// 2. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewStdLogger(false, false),
	)

	// 3. Payment core
	publisher := notify.NewNatsPublisher(natsPub, sysLogger)
	calculator := pricing.NewCalculator(cfg.Payment.PlatformFeePercent)
	courses := memory.NewCourseCache(implementation.NewCourseRepository(db), courseCacheTTL)

	instructorLedger := ledger.NewLedger(uowFactory, ledger.Policy{
		HoldingPeriod: cfg.Payment.HoldingPeriod(),
		PayoutMinimum: cfg.Payment.PayoutMinimum,
	}, publisher, sysLogger)

	engine := reconcile.NewEngine(uowFactory, gw, instructorLedger, publisher, sysLogger,
		reconcile.WithPollGuard(reconcile.NewRedisPollGuard(rdb, cfg.Payment.PollGuardTTL, sysLogger)),
	)
	poller := reconcile.NewPoller(engine, reconcile.PollPolicy{
		InitialInterval: cfg.Payment.PollInitialInterval,
		MaxInterval:     cfg.Payment.PollMaxInterval,
		MaxAttempts:     cfg.Payment.PollMaxAttempts,
	}, sysLogger)
	sweeper := reconcile.NewSweeper(uowFactory, engine, cfg.Payment.StalePendingAfter, cfg.Payment.StaleSweepBatch, sysLogger)

	refunds := refund.NewWorkflow(uowFactory, gw, instructorLedger, publisher, cfg.Payment.RefundWindow(), sysLogger,
		refund.WithSettleAfter(cfg.Payment.RefundSettleAfter),
	)
	cards := vault.NewVault(uowFactory, tokenizer, sysLogger)

	// 4. Services
	paymentService := service.NewPaymentService(uowFactory, courses, gw, calculator, engine, poller, cards,
		cfg.Payment.DefaultCurrency, sysLogger)
	refundService := service.NewRefundService(refunds)
	cardService := service.NewCardService(cards)
	instructorService := service.NewInstructorService(instructorLedger)
	consumerService := service.NewConsumerService(pubSub, service.WebhookTopic, engine, service.RetryPolicy{
		MaxRetries:      cfg.Payment.WebhookMaxRetries,
		InitialInterval: cfg.Payment.WebhookRetryInterval,
		MaxInterval:     cfg.Payment.WebhookRetryMaxBackoff,
	}, sysLogger)

	// 5. Notification System Infrastructure
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)

	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.Email,
			cfg.SMTP.SenderName,
			cfg.App.ClientURL,
			sysLogger,
		)
	}
	notifService := service.NewNotificationService(natsSub, wsHub, uowFactory, emailService, wsLogger)

	// 6. Controllers
	auth := serverutils.NewJwtMiddleware(cfg.Auth.JwtSecret)

	return &Container{
		WebhookController:    controller.NewWebhookController(map[string]gateway.Gateway{gw.Name(): gw}, consumerService, sysLogger),
		PaymentController:    controller.NewPaymentController(paymentService, auth),
		RefundController:     controller.NewRefundController(refundService, auth),
		CardController:       controller.NewCardController(cardService, auth),
		InstructorController: controller.NewInstructorController(instructorService, auth),
		AdminController:      controller.NewAdminController(paymentService, refundService, instructorService, auth),

		ConsumerService:     consumerService,
		NotificationService: notifService,
		Scheduler:           scheduler.New(cfg.Schedule, sweeper, instructorLedger, refunds, sysLogger),

		NotificationHandler: handler.NewNotificationHandler(wsHub, cfg.Auth.JwtSecret, wsLogger),
		WebSocketHub:        wsHub,
		Logger:              sysLogger,

		pubSub:  pubSub,
		rdb:     rdb,
		natsPub: natsPub,
		natsSub: natsSub,
	}, nil
}

// Start launches the background workers. They stop when ctx is cancelled.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)

	if err := c.ConsumerService.Consume(ctx); err != nil {
		return fmt.Errorf("start webhook consumer: %w", err)
	}

	if c.natsSub != nil {
		if err := c.NotificationService.Start(); err != nil {
			c.Logger.Warn("BOOTSTRAP", "Notifications disabled", map[string]interface{}{"error": err.Error()})
		}
	}

	return c.Scheduler.Start(ctx)
}

func (c *Container) Close() {
	c.Scheduler.Stop()
	if err := c.pubSub.Close(); err != nil {
		log.Printf("[WARN] Failed to close webhook channel: %v", err)
	}
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	_ = c.rdb.Close()
	_ = c.Logger.Sync()
}
