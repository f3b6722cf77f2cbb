package bulk

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/candidate-tracker/internal/lifecycle"
	"github.com/jonathan/candidate-tracker/internal/memstore"
	"github.com/jonathan/candidate-tracker/internal/notify"
	"github.com/jonathan/candidate-tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLifecycle struct {
	mu       sync.Mutex
	fail     map[uuid.UUID]error
	seen     []uuid.UUID
	inFlight int32
	peak     int32
	delay    time.Duration
}

func (f *fakeLifecycle) do(id uuid.UUID) error {
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		p := atomic.LoadInt32(&f.peak)
		if n <= p || atomic.CompareAndSwapInt32(&f.peak, p, n) {
			break
		}
	}
	time.Sleep(f.delay)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, id)
	return f.fail[id]
}

func (f *fakeLifecycle) Invite(_ context.Context, id uuid.UUID, _, _ string) (*lifecycle.Outcome, error) {
	if err := f.do(id); err != nil {
		return nil, err
	}
	return &lifecycle.Outcome{}, nil
}

func (f *fakeLifecycle) Reject(_ context.Context, id uuid.UUID, _, _ string) (*lifecycle.Outcome, error) {
	if err := f.do(id); err != nil {
		return nil, err
	}
	return &lifecycle.Outcome{Warning: "marked as rejected; notification not confirmed"}, nil
}

func (f *fakeLifecycle) Delete(_ context.Context, id uuid.UUID, _ string) error {
	return f.do(id)
}

func TestApply_PartialFailure(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	fake := &fakeLifecycle{fail: map[uuid.UUID]error{b: errors.New("candidate is already Rejected")}}
	coord := NewCoordinator(fake, 2, nil)

	res, err := coord.Apply(context.Background(), Request{IDs: []uuid.UUID{a, b, c}, Action: ActionInvite})
	require.NoError(t, err)

	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, 1, res.FailureCount)
	require.Len(t, res.Items, 3)
	assert.Equal(t, a, res.Items[0].CandidateID)
	assert.True(t, res.Items[0].Success)
	assert.Equal(t, b, res.Items[1].CandidateID)
	assert.False(t, res.Items[1].Success)
	assert.Contains(t, res.Items[1].Error, "already Rejected")
	assert.True(t, res.Items[2].Success)
}

func TestApply_SnapshotDeduplicates(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	fake := &fakeLifecycle{}
	ids := []uuid.UUID{a, b, a}

	res, err := NewCoordinator(fake, 1, nil).Apply(context.Background(), Request{IDs: ids, Action: ActionDelete})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
	assert.Len(t, fake.seen, 2)
	assert.Equal(t, []uuid.UUID{a, b, a}, ids, "caller slice untouched")
}

func TestApply_WarningsAreCarried(t *testing.T) {
	res, err := NewCoordinator(&fakeLifecycle{}, 0, nil).Apply(context.Background(), Request{IDs: []uuid.UUID{uuid.New()}, Action: ActionReject})
	require.NoError(t, err)
	assert.Equal(t, 1, res.SuccessCount)
	assert.Contains(t, res.Items[0].Warning, "notification not confirmed")
}

func TestApply_BoundedConcurrency(t *testing.T) {
	fake := &fakeLifecycle{delay: 10 * time.Millisecond}
	ids := make([]uuid.UUID, 12)
	for i := range ids {
		ids[i] = uuid.New()
	}

	res, err := NewCoordinator(fake, 3, nil).Apply(context.Background(), Request{IDs: ids, Action: ActionInvite})
	require.NoError(t, err)
	assert.Equal(t, 12, res.SuccessCount)
	assert.LessOrEqual(t, atomic.LoadInt32(&fake.peak), int32(3))
}

func TestApply_UnknownAction(t *testing.T) {
	_, err := NewCoordinator(&fakeLifecycle{}, 0, nil).Apply(context.Background(), Request{IDs: []uuid.UUID{uuid.New()}, Action: "promote"})
	var ve *lifecycle.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestApply_CancelledContextFailsItems(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewCoordinator(&fakeLifecycle{}, 0, nil).Apply(ctx, Request{IDs: []uuid.UUID{uuid.New(), uuid.New()}, Action: ActionInvite})
	require.NoError(t, err)
	assert.Equal(t, 2, res.FailureCount)
}

type okDispatcher struct{ n int32 }

func (d *okDispatcher) Dispatch(context.Context, notify.Request) notify.Result {
	atomic.AddInt32(&d.n, 1)
	return notify.Result{Success: true}
}

func TestApply_AgainstLifecycle(t *testing.T) {
	store := memstore.New()
	disp := &okDispatcher{}
	svc := lifecycle.NewService(store, disp, lifecycle.Policy{}, nil)
	ctx := context.Background()

	create := func(status types.Status) uuid.UUID {
		out, err := svc.Create(ctx, lifecycle.NewCandidate{
			Name: "C", Email: uuid.NewString() + "@example.com", Role: "Engineer",
			FitScore: 60, FitCategory: types.FitMedium, Status: status,
		})
		require.NoError(t, err)
		return out.Candidate.ID
	}
	a := create(types.StatusReview)
	b := create(types.StatusRejected)
	c := create(types.StatusPending)

	res, err := NewCoordinator(svc, 0, nil).Apply(ctx, Request{IDs: []uuid.UUID{a, b, c}, Action: ActionInvite})
	require.NoError(t, err)
	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, 1, res.FailureCount)
	assert.False(t, res.Items[1].Success)

	trail, err := svc.Actions(ctx, a)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, types.ActorBulk, trail[0].Actor)
	// one reject dispatch at creation plus two bulk invites
	assert.Equal(t, int32(3), atomic.LoadInt32(&disp.n))
}
