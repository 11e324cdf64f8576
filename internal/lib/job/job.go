// Package job runs background work on asynq: fire-and-forget notification
// delivery and the periodic settlement reconciliation.
package job

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/deppfellow/go-marketplace/internal/config"
	"github.com/deppfellow/go-marketplace/internal/lib/email"
	"github.com/deppfellow/go-marketplace/internal/lib/settlement"
	"github.com/deppfellow/go-marketplace/internal/model"
)

// NotificationStore persists in-app notifications.
type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) (*model.Notification, error)
}

// Mailer delivers the email channel.
type Mailer interface {
	SendWithdrawalRequestedEmail(to string, w email.WithdrawalEmail) error
	SendWithdrawalStatusEmail(to string, w email.WithdrawalEmail) error
}

// LedgerSource supplies the aggregates compared by the reconcile task.
type LedgerSource interface {
	RevenueByVendor(ctx context.Context) (map[uuid.UUID]decimal.Decimal, error)
	TotalsByVendor(ctx context.Context) (map[uuid.UUID]model.LedgerTotals, error)
}

// Dependencies are the collaborators task handlers need. They are bound after
// the repositories exist, before Start.
type Dependencies struct {
	Notifications NotificationStore
	Mailer        Mailer
	Ledger        LedgerSource
	Policy        settlement.Policy
}

// JobService holds the asynq client (enqueue), server (workers) and
// scheduler (periodic tasks).
type JobService struct {
	Client    *asynq.Client
	server    *asynq.Server
	scheduler *asynq.Scheduler
	cfg       *config.Config
	logger    *zerolog.Logger
	deps      Dependencies
}

func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
				QueueLow:      1,
			},
			Logger:   newAsynqLogger(logger),
			LogLevel: asynq.WarnLevel,
		},
	)

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Logger:   newAsynqLogger(logger),
		LogLevel: asynq.WarnLevel,
	})

	return &JobService{
		Client:    client,
		server:    server,
		scheduler: scheduler,
		cfg:       cfg,
		logger:    logger,
	}
}

// InitHandlers binds the handler dependencies.
func (j *JobService) InitHandlers(deps Dependencies) {
	j.deps = deps
}

func (j *JobService) mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskNotification, j.handleNotificationTask)
	mux.HandleFunc(TaskSettlementReconcile, j.handleReconcileTask)
	return mux
}

// Start launches the workers and registers the periodic reconcile task.
// Both run in the background.
func (j *JobService) Start() error {
	j.logger.Info().Msg("starting background job server")

	if err := j.server.Start(j.mux()); err != nil {
		return fmt.Errorf("failed to start job server: %w", err)
	}

	schedule := fmt.Sprintf("@every %s", j.cfg.Settlement.ReconcileInterval)
	entryID, err := j.scheduler.Register(schedule, NewReconcileTask(j.cfg.Settlement.ReconcileInterval))
	if err != nil {
		return fmt.Errorf("failed to register reconcile task: %w", err)
	}

	if err := j.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start job scheduler: %w", err)
	}

	j.logger.Info().
		Str("entry_id", entryID).
		Str("schedule", schedule).
		Msg("scheduled settlement reconciliation")
	return nil
}

// Stop shuts down the scheduler and workers, then closes the client.
func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.scheduler.Shutdown()
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}
