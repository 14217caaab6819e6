package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stockiq/backend-go/internal/domain"
	"github.com/stockiq/backend-go/internal/repository"
	"github.com/stockiq/backend-go/pkg/logger"
)

// RunReport summarizes one engine execution.
type RunReport struct {
	ID          string             `json:"id"`
	CalcDate    string             `json:"calc_date"`
	MetricRows  int                `json:"metric_rows"`
	Alerts      domain.AlertCounts `json:"alerts"`
	Transfers   int                `json:"transfers"`
	Purchases   int                `json:"purchases"`
	StartedAt   time.Time          `json:"started_at"`
	CompletedAt time.Time          `json:"completed_at"`
}

// Orchestrator runs the four analysis stages in order for one calculation
// date. Stages are strictly sequential, each consumes the previous one's
// persisted output. Running twice for the same date produces the same rows.
type Orchestrator struct {
	store     repository.EngineStore
	metrics   *MetricStage
	alerts    *AlertClassifier
	transfers *TransferMatcher
	purchases *PurchaseSizer
	log       zerolog.Logger
}

func NewOrchestrator(store repository.EngineStore, th Thresholds) *Orchestrator {
	return &Orchestrator{
		store:     store,
		metrics:   NewMetricStage(store, NewMetricCalculator(th)),
		alerts:    NewAlertClassifier(store, th),
		transfers: NewTransferMatcher(store, th),
		purchases: NewPurchaseSizer(store, th),
		log:       logger.Log.With().Str("component", "orchestrator").Logger(),
	}
}

// Run executes metrics, alerts, transfers and purchases for calcDate and
// records the execution in the run log. The first failing stage aborts the
// run; stages already committed keep their output.
func (o *Orchestrator) Run(ctx context.Context, calcDate time.Time) (*RunReport, error) {
	calcDate = calcDate.Truncate(24 * time.Hour)
	report := &RunReport{
		ID:        uuid.NewString(),
		CalcDate:  calcDate.Format("2006-01-02"),
		StartedAt: time.Now().UTC(),
	}
	run := &domain.EngineRun{
		RunID:     report.ID,
		CalcDate:  calcDate,
		Status:    domain.RunStatusRunning,
		StartedAt: report.StartedAt,
	}
	if err := o.store.CreateEngineRun(ctx, run); err != nil {
		return nil, err
	}

	o.log.Info().Str("run_id", report.ID).Str("calc_date", report.CalcDate).Msg("starting analysis run")

	err := o.runStages(ctx, calcDate, report)
	now := time.Now().UTC()
	run.CompletedAt = &now
	run.MetricRows = report.MetricRows
	run.AlertCount = report.Alerts.Total
	run.TransferCount = report.Transfers
	run.PurchaseCount = report.Purchases
	if err != nil {
		run.Status = domain.RunStatusFailed
		run.ErrorMessage = err.Error()
		if uerr := o.store.UpdateEngineRun(ctx, run); uerr != nil {
			o.log.Error().Err(uerr).Str("run_id", run.RunID).Msg("recording failed run")
		}
		o.log.Error().Err(err).Str("run_id", report.ID).Msg("analysis run failed")
		return nil, err
	}

	run.Status = domain.RunStatusCompleted
	if uerr := o.store.UpdateEngineRun(ctx, run); uerr != nil {
		o.log.Error().Err(uerr).Str("run_id", run.RunID).Msg("recording completed run")
	}
	report.CompletedAt = now

	o.log.Info().
		Str("run_id", report.ID).
		Int("metric_rows", report.MetricRows).
		Int("alerts", report.Alerts.Total).
		Int("transfers", report.Transfers).
		Int("purchases", report.Purchases).
		Dur("elapsed", report.CompletedAt.Sub(report.StartedAt)).
		Msg("analysis run completed")
	return report, nil
}

func (o *Orchestrator) runStages(ctx context.Context, calcDate time.Time, report *RunReport) error {
	var err error
	if report.MetricRows, err = o.metrics.Run(ctx, calcDate); err != nil {
		return err
	}
	if report.Alerts, err = o.alerts.Run(ctx, calcDate); err != nil {
		return err
	}
	if report.Transfers, err = o.transfers.Run(ctx, calcDate); err != nil {
		return err
	}
	if report.Purchases, err = o.purchases.Run(ctx, calcDate); err != nil {
		return err
	}
	return nil
}
