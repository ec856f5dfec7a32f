package service

import (
	"context"
	"time"

	"hms-ipd-backend/internal/repository"

	"go.uber.org/zap"
)

// WorkerService periodically reports emergency transfers that still owe
// their written justification. It only reports; stale recommendations are
// never expired by the engine.
type WorkerService struct {
	stores   repository.Stores
	logger   *zap.Logger
	interval time.Duration
}

func NewWorkerService(stores repository.Stores, logger *zap.Logger, interval time.Duration) *WorkerService {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &WorkerService{stores: stores, logger: logger, interval: interval}
}

// Start runs the watchdog loop until the context is cancelled.
func (w *WorkerService) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("justification watchdog started", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("justification watchdog stopped")
			return
		case <-ticker.C:
			w.report()
		}
	}
}

func (w *WorkerService) report() {
	recs, err := w.stores.Transfers().ListPendingJustifications()
	if err != nil {
		w.logger.Error("pending justification query failed", zap.Error(err))
		return
	}
	if len(recs) == 0 {
		return
	}

	w.logger.Warn("emergency transfers missing written justification", zap.Int("count", len(recs)))
	for _, rec := range recs {
		w.logger.Warn("justification pending",
			zap.Uint("recommendation_id", rec.ID),
			zap.String("tracking_code", rec.TrackingCode),
			zap.Time("recommended_at", rec.CreatedAt))
	}
}
