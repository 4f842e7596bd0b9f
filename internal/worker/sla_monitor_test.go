package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/procure-indent/internal/domain/entity"
	"github.com/garyjia/procure-indent/internal/domain/workflow"
)

type stubIndentRepo struct {
	inFlight []*entity.Indent
	err      error
}

func (r *stubIndentRepo) Create(ctx context.Context, indent *entity.Indent) error { return nil }
func (r *stubIndentRepo) GetByID(ctx context.Context, id string) (*entity.Indent, error) {
	return nil, nil
}
func (r *stubIndentRepo) SaveTransition(ctx context.Context, indent *entity.Indent, expectedVersion int64) error {
	return nil
}
func (r *stubIndentRepo) List(ctx context.Context, limit, offset int) ([]*entity.Indent, error) {
	return nil, nil
}
func (r *stubIndentRepo) ListInFlight(ctx context.Context) ([]*entity.Indent, error) {
	return r.inFlight, r.err
}

type recordedNotification struct {
	userID string
	ntype  string
	link   string
}

type stubNotifier struct {
	recorded []recordedNotification
}

func (n *stubNotifier) Notify(ctx context.Context, userID, ntype, title, message, link string) error {
	n.recorded = append(n.recorded, recordedNotification{userID: userID, ntype: ntype, link: link})
	return nil
}

func (n *stubNotifier) ListForUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	return nil, nil
}

func (n *stubNotifier) MarkRead(ctx context.Context, id string) error { return nil }

func pendingIndent(id string, deadline time.Time) *entity.Indent {
	return &entity.Indent{
		ID:          id,
		RequesterID: "requester-" + id,
		Title:       "Indent " + id,
		Status:      entity.StatusPending,
		SLADeadline: &deadline,
	}
}

func TestSLAMonitorScanFlagsOnlyBreachedIndents(t *testing.T) {
	now := time.Now()
	repo := &stubIndentRepo{
		inFlight: []*entity.Indent{
			pendingIndent("overdue", now.Add(-time.Hour)),
			pendingIndent("on-time", now.Add(time.Hour)),
		},
	}
	notifier := &stubNotifier{}

	monitor := NewSLAMonitor(repo, notifier, workflow.NewSLAClock(nil), time.Minute, zap.NewNop())
	monitor.scan(context.Background())

	require.Len(t, notifier.recorded, 1)
	assert.Equal(t, "requester-overdue", notifier.recorded[0].userID)
	assert.Equal(t, entity.NotificationSLABreach, notifier.recorded[0].ntype)
	assert.Equal(t, "overdue", notifier.recorded[0].link)
}

func TestSLAMonitorScanReportsEachDeadlineOnce(t *testing.T) {
	deadline := time.Now().Add(-time.Hour)
	repo := &stubIndentRepo{inFlight: []*entity.Indent{pendingIndent("overdue", deadline)}}
	notifier := &stubNotifier{}

	monitor := NewSLAMonitor(repo, notifier, workflow.NewSLAClock(nil), time.Minute, zap.NewNop())
	monitor.scan(context.Background())
	monitor.scan(context.Background())

	assert.Len(t, notifier.recorded, 1)
}

func TestSLAMonitorScanReportsAgainForNewDeadline(t *testing.T) {
	repo := &stubIndentRepo{inFlight: []*entity.Indent{pendingIndent("overdue", time.Now().Add(-2*time.Hour))}}
	notifier := &stubNotifier{}

	monitor := NewSLAMonitor(repo, notifier, workflow.NewSLAClock(nil), time.Minute, zap.NewNop())
	monitor.scan(context.Background())

	// the indent advanced a stage and breached its next window too
	repo.inFlight = []*entity.Indent{pendingIndent("overdue", time.Now().Add(-time.Hour))}
	monitor.scan(context.Background())

	assert.Len(t, notifier.recorded, 2)
}

func TestSLAMonitorStartAndStop(t *testing.T) {
	repo := &stubIndentRepo{}
	monitor := NewSLAMonitor(repo, &stubNotifier{}, workflow.NewSLAClock(nil), time.Hour, zap.NewNop())

	require.NoError(t, monitor.Start(context.Background()))
	require.Error(t, monitor.Start(context.Background()))

	monitor.Stop()
	monitor.Stop()
}
