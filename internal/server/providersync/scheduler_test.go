package providersync

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/storage"
)

func linkedKeys(n int) []storage.CredentialKey {
	keys := make([]storage.CredentialKey, 0, n)
	for i := range n {
		keys = append(keys, storage.CredentialKey{UserID: int64(i + 1), Provider: models.ProviderGoogle})
	}
	return keys
}

func TestScheduler_RunOnceLimitsConcurrency(t *testing.T) {
	var active, peak atomic.Int32
	syncer := &SyncerMock{
		SyncForUserFunc: func(ctx context.Context, userID int64, provider models.Provider) *Outcome {
			n := active.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			active.Add(-1)
			return &Outcome{Status: StatusOK}
		},
	}
	keys := &KeyListerMock{
		ListCredentialKeysFunc: func(ctx context.Context) ([]storage.CredentialKey, error) {
			return linkedKeys(6), nil
		},
	}

	s := NewScheduler(syncer, keys, time.Minute, 2, setupTestLogger())
	require.NoError(t, s.RunOnce(context.Background()))

	assert.Len(t, syncer.SyncForUserCalls(), 6)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestScheduler_RunOnceContinuesAfterFailures(t *testing.T) {
	syncer := &SyncerMock{
		SyncForUserFunc: func(ctx context.Context, userID int64, provider models.Provider) *Outcome {
			switch userID {
			case 1:
				return &Outcome{Status: StatusError, Error: "boom"}
			case 2:
				return &Outcome{Status: StatusError, Error: storage.ErrSyncInProgress.Error(), Busy: true}
			}
			return &Outcome{Status: StatusOK}
		},
	}
	keys := &KeyListerMock{
		ListCredentialKeysFunc: func(ctx context.Context) ([]storage.CredentialKey, error) {
			return linkedKeys(3), nil
		},
	}

	s := NewScheduler(syncer, keys, time.Minute, 1, setupTestLogger())
	require.NoError(t, s.RunOnce(context.Background()))

	var users []int64
	for _, c := range syncer.SyncForUserCalls() {
		users = append(users, c.UserID)
	}
	assert.ElementsMatch(t, []int64{1, 2, 3}, users)
}

func TestScheduler_RunOnceListError(t *testing.T) {
	syncer := &SyncerMock{}
	keys := &KeyListerMock{
		ListCredentialKeysFunc: func(ctx context.Context) ([]storage.CredentialKey, error) {
			return nil, errors.New("db closed")
		},
	}

	s := NewScheduler(syncer, keys, time.Minute, 1, setupTestLogger())
	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db closed")
	assert.Empty(t, syncer.SyncForUserCalls())
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	syncer := &SyncerMock{
		SyncForUserFunc: func(ctx context.Context, userID int64, provider models.Provider) *Outcome {
			return &Outcome{Status: StatusOK}
		},
	}
	keys := &KeyListerMock{
		ListCredentialKeysFunc: func(ctx context.Context) ([]storage.CredentialKey, error) {
			return linkedKeys(1), nil
		},
	}

	s := NewScheduler(syncer, keys, 5*time.Millisecond, 1, setupTestLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return len(syncer.SyncForUserCalls()) >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
