package cleanup

import (
	"context"
	"log"
	"sync"
	"time"

	"authapp/internal/repository"
)

// Reaperは期限切れセッションを定期的に物理削除する。
// リクエスト経路からは完全に独立して動く。
// Start/Stopで寿命を管理し、テストはRunOnceを直接呼べばよい。
type Reaper struct {
	sessions repository.SessionRepository
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	running bool
}

// DI
func NewReaper(sessions repository.SessionRepository, interval time.Duration) *Reaper {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Reaper{
		sessions: sessions,
		interval: interval,
		now:      time.Now,
	}
}

// Startは掃除ループを起動する。二重起動は無視。
func (r *Reaper) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return
	}
	r.running = true
	r.stop = make(chan struct{})
	r.done = make(chan struct{})

	go r.loop(r.stop, r.done)
}

// Stopはループを止めて終了を待つ。
func (r *Reaper) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	stop, done := r.stop, r.done
	r.mu.Unlock()

	close(stop)
	<-done
}

func (r *Reaper) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if _, err := r.RunOnce(context.Background()); err != nil {
				log.Printf("reaper: sweep failed: %v", err)
			}
		}
	}
}

// RunOnceは1回分の掃除を同期的に実行して削除件数を返す。
func (r *Reaper) RunOnce(ctx context.Context) (int64, error) {
	deleted, err := r.sessions.DeleteExpired(ctx, r.now())
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		log.Printf("reaper: deleted %d expired sessions", deleted)
	}

	return deleted, nil
}
