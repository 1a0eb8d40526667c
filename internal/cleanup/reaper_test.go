package cleanup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"authapp/internal/domain/model"
	"authapp/internal/repository"

	"github.com/stretchr/testify/assert"
)

// =====================
// Stub: SessionRepository
// =====================

// DeleteExpiredだけ動けばよいので手書きスタブで済ます
type stubSessionRepository struct {
	mu         sync.Mutex
	deleted    int64
	deleteErr  error
	calls      int
	lastDeadAt time.Time
}

func (s *stubSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastDeadAt = now
	return s.deleted, s.deleteErr
}

func (s *stubSessionRepository) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubSessionRepository) Create(ctx context.Context, session *model.Session) error {
	return nil
}

func (s *stubSessionRepository) FindByID(ctx context.Context, sessionID string) (*model.Session, error) {
	return nil, repository.ErrSessionNotFound
}

func (s *stubSessionRepository) FindByAccessToken(ctx context.Context, accessToken string) (*model.Session, error) {
	return nil, repository.ErrSessionNotFound
}

func (s *stubSessionRepository) FindByRefreshToken(ctx context.Context, refreshToken string) (*model.Session, error) {
	return nil, repository.ErrSessionNotFound
}

func (s *stubSessionRepository) DeactivateAllByUserID(ctx context.Context, userID string) error {
	return nil
}

func (s *stubSessionRepository) Deactivate(ctx context.Context, sessionID string) error {
	return nil
}

func (s *stubSessionRepository) Rotate(ctx context.Context, sessionID string, oldRefreshToken string, p repository.SessionRotateParams) error {
	return nil
}

func (s *stubSessionRepository) TouchActivity(ctx context.Context, sessionID string, at time.Time) error {
	return nil
}

func (s *stubSessionRepository) ListActiveByUserID(ctx context.Context, userID string, now time.Time) ([]model.Session, error) {
	return nil, nil
}

// =====================
// RunOnce
// =====================

func TestReaper_RunOnce_ReturnsDeletedCount(t *testing.T) {
	repo := &stubSessionRepository{deleted: 3}
	r := NewReaper(repo, time.Minute)

	fixed := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	deleted, err := r.RunOnce(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.Equal(t, fixed, repo.lastDeadAt)
}

func TestReaper_RunOnce_StoreFailure(t *testing.T) {
	repo := &stubSessionRepository{deleteErr: errors.New("db down")}
	r := NewReaper(repo, time.Minute)

	deleted, err := r.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Zero(t, deleted)
}

// =====================
// Start / Stop
// =====================

func TestReaper_StartStop(t *testing.T) {
	repo := &stubSessionRepository{}
	r := NewReaper(repo, 5*time.Millisecond)

	r.Start()

	// tickが数回回るまで待つ
	assert.Eventually(t, func() bool {
		return repo.callCount() >= 2
	}, time.Second, 5*time.Millisecond)

	r.Stop()
	after := repo.callCount()

	// 停止後は回らない
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, repo.callCount())
}

func TestReaper_StartTwiceIsNoop(t *testing.T) {
	repo := &stubSessionRepository{}
	r := NewReaper(repo, time.Hour)

	r.Start()
	r.Start() // 二重起動しても落ちない
	r.Stop()
	r.Stop() // 二重停止も安全
}

func TestReaper_SweepFailureKeepsLoopAlive(t *testing.T) {
	repo := &stubSessionRepository{deleteErr: errors.New("db down")}
	r := NewReaper(repo, 5*time.Millisecond)

	r.Start()
	defer r.Stop()

	// 失敗してもループは止まらず呼び続ける
	assert.Eventually(t, func() bool {
		return repo.callCount() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestNewReaper_DefaultInterval(t *testing.T) {
	r := NewReaper(&stubSessionRepository{}, 0)
	assert.Equal(t, 30*time.Minute, r.interval)
}
