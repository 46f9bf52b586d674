package seatsync

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ms-seating/internal/logger"
	"ms-seating/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) LoadAll(ctx context.Context) ([]models.SeatChange, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SeatChange), args.Error(1)
}

func (m *MockStorage) Upsert(ctx context.Context, change models.SeatChange) error {
	return m.Called(ctx, change).Error(0)
}

func (m *MockStorage) Remove(ctx context.Context, seatID string) error {
	return m.Called(ctx, seatID).Error(0)
}

func (m *MockStorage) RemoveAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishSeatChange(ctx context.Context, event models.SeatStatusChangeEventDto) error {
	return m.Called(ctx, event).Error(0)
}

type MockAnnouncer struct {
	mock.Mock
}

func (m *MockAnnouncer) Announce(ctx context.Context, op string) error {
	return m.Called(ctx, op).Error(0)
}

// chanNotifier forwards whatever is sent on fire as notifications
type chanNotifier struct {
	fire chan struct{}
}

func (n *chanNotifier) Listen(ctx context.Context, onChange func()) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-n.fire:
			onChange()
		}
	}
}

// lockedBuffer guards the log sink, persistence goroutines log concurrently
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestPersistUpsertsAndRemoves(t *testing.T) {
	storage := new(MockStorage)
	publisher := new(MockPublisher)
	announcer := new(MockAnnouncer)

	reserved := models.SeatChange{SeatID: "1-1-1", Status: models.SeatStatusReserved, Group: "A"}
	freed := models.SeatChange{SeatID: "1-1-2", Status: models.SeatStatusFree}

	storage.On("Upsert", mock.Anything, reserved).Return(nil).Once()
	storage.On("Remove", mock.Anything, "1-1-2").Return(nil).Once()
	publisher.On("PublishSeatChange", mock.Anything, mock.MatchedBy(func(e models.SeatStatusChangeEventDto) bool {
		return e.SeatID == "1-1-1" && !e.Removed && e.Source == "node-a"
	})).Return(nil).Once()
	publisher.On("PublishSeatChange", mock.Anything, mock.MatchedBy(func(e models.SeatStatusChangeEventDto) bool {
		return e.SeatID == "1-1-2" && e.Removed
	})).Return(nil).Once()
	announcer.On("Announce", mock.Anything, "UPSERT").Return(nil).Once()
	announcer.On("Announce", mock.Anything, "DELETE").Return(nil).Once()

	a := NewAdapter(storage, logger.NewWriterLogger(io.Discard), "node-a", time.Second)
	a.Publisher = publisher
	a.Announcer = announcer

	a.Persist([]models.SeatChange{reserved, freed})
	a.Wait()

	storage.AssertExpectations(t)
	publisher.AssertExpectations(t)
	announcer.AssertExpectations(t)
}

func TestPersistFailureIsLoggedNotPublished(t *testing.T) {
	storage := new(MockStorage)
	publisher := new(MockPublisher)
	logs := &lockedBuffer{}

	storage.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	a := NewAdapter(storage, logger.NewWriterLogger(logs), "node-a", time.Second)
	a.Publisher = publisher

	a.Persist([]models.SeatChange{{SeatID: "3-2-1", Status: models.SeatStatusOccupied}})
	a.Wait()

	publisher.AssertNotCalled(t, "PublishSeatChange", mock.Anything, mock.Anything)
	assert.Contains(t, logs.String(), "UPSERT 3-2-1 failed")
}

func TestPersistResetRemovesAll(t *testing.T) {
	storage := new(MockStorage)
	announcer := new(MockAnnouncer)
	storage.On("RemoveAll", mock.Anything).Return(nil).Once()
	announcer.On("Announce", mock.Anything, "RESET").Return(nil).Once()

	a := NewAdapter(storage, logger.NewWriterLogger(io.Discard), "node-a", 0)
	a.Announcer = announcer

	a.PersistReset()
	a.Wait()

	storage.AssertExpectations(t)
	announcer.AssertExpectations(t)
}

func TestLoadAllPropagatesError(t *testing.T) {
	storage := new(MockStorage)
	storage.On("LoadAll", mock.Anything).Return(nil, errors.New("timeout"))

	a := NewAdapter(storage, logger.NewWriterLogger(io.Discard), "node-a", 0)
	changes, err := a.LoadAll(context.Background())

	assert.Error(t, err)
	assert.Nil(t, changes)
}

func TestOnChangeReloadsOnNotification(t *testing.T) {
	a := NewAdapter(new(MockStorage), logger.NewWriterLogger(io.Discard), "node-a", 0)
	n := &chanNotifier{fire: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	var reloads atomic.Int32
	a.OnChange(ctx, func(context.Context) { reloads.Add(1) }, n)

	n.fire <- struct{}{}
	require.Eventually(t, func() bool { return reloads.Load() == 1 }, time.Second, 5*time.Millisecond)

	n.fire <- struct{}{}
	require.Eventually(t, func() bool { return reloads.Load() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	a.Wait()
}

func TestOnChangeCoalescesBursts(t *testing.T) {
	a := NewAdapter(new(MockStorage), logger.NewWriterLogger(io.Discard), "node-a", 0)
	n := &chanNotifier{fire: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	var reloads atomic.Int32
	a.OnChange(ctx, func(context.Context) {
		reloads.Add(1)
		<-release
	}, n)

	// first notification starts a reload that blocks; the rest pile up
	n.fire <- struct{}{}
	require.Eventually(t, func() bool { return reloads.Load() == 1 }, time.Second, 5*time.Millisecond)
	for i := 0; i < 4; i++ {
		n.fire <- struct{}{}
	}
	close(release)

	require.Eventually(t, func() bool { return reloads.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), reloads.Load())

	cancel()
	a.Wait()
}
