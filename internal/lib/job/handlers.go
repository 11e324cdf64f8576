package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/deppfellow/go-marketplace/internal/lib/email"
	"github.com/deppfellow/go-marketplace/internal/model"
)

func (j *JobService) handleNotificationTask(ctx context.Context, t *asynq.Task) error {
	var p NotificationPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal notification payload: %w: %w", err, asynq.SkipRetry)
	}

	return j.deliverNotification(ctx, p)
}

// deliverNotification makes one attempt per channel. The in-app row is the
// record of delivery; email failures are logged and do not fail the task.
func (j *JobService) deliverNotification(ctx context.Context, p NotificationPayload) error {
	log := j.logger.With().
		Str("type", string(p.Type)).
		Str("recipient_id", p.RecipientID).
		Str("withdrawal_id", p.WithdrawalID).
		Logger()

	if _, err := j.deps.Notifications.Create(ctx, &model.Notification{
		RecipientID: p.RecipientID,
		Type:        p.Type,
		Message:     p.Message,
	}); err != nil {
		log.Error().Err(err).Msg("failed to store in-app notification")
		return err
	}

	if p.RecipientAddress != "" && j.deps.Mailer != nil {
		data := email.WithdrawalEmail{
			WithdrawalID: p.WithdrawalID,
			Status:       p.Status,
			Amount:       p.Amount,
			Message:      p.Message,
		}

		var err error
		if p.Type == model.NotificationWithdrawalRequested {
			err = j.deps.Mailer.SendWithdrawalRequestedEmail(p.RecipientAddress, data)
		} else {
			err = j.deps.Mailer.SendWithdrawalStatusEmail(p.RecipientAddress, data)
		}
		if err != nil {
			log.Error().Err(err).Msg("failed to send notification email")
		}
	}

	if p.DeviceToken != "" {
		// No push provider is wired; the token is carried for when one is.
		log.Debug().Msg("push channel not configured, skipping device delivery")
	}

	log.Info().Msg("notification delivered")
	return nil
}

func (j *JobService) handleReconcileTask(ctx context.Context, _ *asynq.Task) error {
	_, err := j.Reconcile(ctx)
	return err
}

// ReconcileReport lists the vendors whose earnings ledger disagrees with
// their payment-derived net earnings.
type ReconcileReport struct {
	Checked  int
	Diverged []uuid.UUID
}

// Reconcile compares each vendor's ledger Σ final_amount with the net
// earnings derived from successful payments and logs every divergence.
func (j *JobService) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	revenue, err := j.deps.Ledger.RevenueByVendor(ctx)
	if err != nil {
		return nil, err
	}
	ledger, err := j.deps.Ledger.TotalsByVendor(ctx)
	if err != nil {
		return nil, err
	}

	vendors := make(map[uuid.UUID]struct{}, len(revenue)+len(ledger))
	for id := range revenue {
		vendors[id] = struct{}{}
	}
	for id := range ledger {
		vendors[id] = struct{}{}
	}

	report := &ReconcileReport{Checked: len(vendors)}
	for vendorID := range vendors {
		totals := ledger[vendorID]
		gross, ok := revenue[vendorID]
		if !ok {
			gross = decimal.Zero
		}

		drift := j.deps.Policy.CompareLedger(totals.FinalAmount, gross, totals.RowCount)
		if !drift.Diverged {
			continue
		}

		report.Diverged = append(report.Diverged, vendorID)
		j.logger.Warn().
			Str("vendor_id", vendorID.String()).
			Str("ledger_net", drift.LedgerNet.StringFixed(2)).
			Str("derived_net", drift.DerivedNet.StringFixed(2)).
			Str("difference", drift.Difference.StringFixed(2)).
			Msg("earnings ledger diverges from payment-derived balance")
	}

	j.logger.Info().
		Int("vendors_checked", report.Checked).
		Int("vendors_diverged", len(report.Diverged)).
		Msg("settlement reconciliation finished")
	return report, nil
}
