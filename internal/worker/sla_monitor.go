package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/procure-indent/internal/application/port"
	"github.com/garyjia/procure-indent/internal/application/service"
	"github.com/garyjia/procure-indent/internal/domain/entity"
	"github.com/garyjia/procure-indent/internal/domain/workflow"
)

// SLAMonitor periodically scans in-flight indents and records a breach
// notification for each indent whose stage deadline has passed without a
// decision.
type SLAMonitor struct {
	indentRepo port.IndentRepository
	notifier   service.NotificationService
	slaClock   *workflow.SLAClock
	logger     *zap.Logger

	period time.Duration

	mu        sync.RWMutex
	isRunning bool
	cancel    context.CancelFunc
	done      chan struct{}

	// notified tracks deadlines already flagged so a breach is reported
	// once per stage, not once per tick
	notified map[string]time.Time
}

// NewSLAMonitor creates a new SLA monitor
func NewSLAMonitor(
	indentRepo port.IndentRepository,
	notifier service.NotificationService,
	slaClock *workflow.SLAClock,
	period time.Duration,
	logger *zap.Logger,
) *SLAMonitor {
	if period <= 0 {
		period = 5 * time.Minute
	}
	return &SLAMonitor{
		indentRepo: indentRepo,
		notifier:   notifier,
		slaClock:   slaClock,
		period:     period,
		logger:     logger,
		notified:   make(map[string]time.Time),
	}
}

// Name returns the worker name
func (m *SLAMonitor) Name() string {
	return "sla-monitor"
}

// Start starts the monitor loop
func (m *SLAMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isRunning {
		return fmt.Errorf("sla monitor is already running")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.isRunning = true

	m.logger.Info("SLAMonitor started", zap.Duration("period", m.period))

	go m.loop(loopCtx)
	return nil
}

// Stop stops the monitor loop and waits for it to finish
func (m *SLAMonitor) Stop() {
	m.mu.Lock()
	if !m.isRunning {
		m.mu.Unlock()
		return
	}
	m.isRunning = false
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()

	cancel()
	<-done
}

func (m *SLAMonitor) loop(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.scan(ctx)
		}
	}
}

func (m *SLAMonitor) scan(ctx context.Context) {
	indents, err := m.indentRepo.ListInFlight(ctx)
	if err != nil {
		m.logger.Error("SLA scan failed", zap.Error(err))
		return
	}

	now := time.Now()
	for _, indent := range indents {
		if indent.SLADeadline == nil || !m.slaClock.IsBreached(*indent.SLADeadline, now) {
			continue
		}
		if seen, ok := m.notified[indent.ID]; ok && seen.Equal(*indent.SLADeadline) {
			continue
		}

		err := m.notifier.Notify(ctx, indent.RequesterID, entity.NotificationSLABreach,
			"Approval SLA breached",
			fmt.Sprintf("Indent %q has been awaiting a decision past its %s deadline",
				indent.Title, indent.SLADeadline.Format(time.RFC3339)),
			indent.ID)
		if err != nil {
			m.logger.Error("Failed to record SLA breach notification",
				zap.String("indent_id", indent.ID), zap.Error(err))
			continue
		}

		m.notified[indent.ID] = *indent.SLADeadline
		m.logger.Info("SLA breach flagged",
			zap.String("indent_id", indent.ID),
			zap.Time("deadline", *indent.SLADeadline))
	}
}
