package browse

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/livsmedel/internal/model"
)

// SessionGauge はアクティブなセッション数を記録するインターフェース。
type SessionGauge interface {
	SetActiveSessions(n int)
}

// RegistryConfig はRegistryの設定。
type RegistryConfig struct {
	// MaxSessions は同時に保持するセッション数の上限。0以下の場合は無制限。
	MaxSessions int
	// IdleTTL はこの時間操作されなかったセッションを破棄する（デフォルト: 30分）。
	IdleTTL time.Duration
	// SweepInterval は期限切れセッションの掃除間隔（デフォルト: 1分）。
	SweepInterval time.Duration
}

const (
	defaultIdleTTL       = 30 * time.Minute
	defaultSweepInterval = time.Minute
)

// Registry はHTTPドライバ用のセッション管理。
// セッションはUUIDで識別し、一定時間操作のないものはバックグラウンドで破棄する。
type Registry struct {
	deps   SessionDeps
	cfg    SessionConfig
	config RegistryConfig
	gauge  SessionGauge
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRegistry は新しいRegistryを生成し、バックグラウンドの掃除を開始する。
func NewRegistry(deps SessionDeps, cfg SessionConfig, config RegistryConfig, gauge SessionGauge) *Registry {
	if config.IdleTTL <= 0 {
		config.IdleTTL = defaultIdleTTL
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = defaultSweepInterval
	}
	r := &Registry{
		deps:     deps,
		cfg:      cfg,
		config:   config,
		gauge:    gauge,
		logger:   deps.Logger,
		sessions: make(map[string]*Session),
		stopCh:   make(chan struct{}),
	}

	go r.sweepLoop()

	return r
}

// Create は新しいセッションを生成して最初の一覧取得を開始する。
// langが無効な値の場合は設定の既定言語を使う。
func (r *Registry) Create(lang model.Language) (*Session, error) {
	cfg := r.cfg
	if lang.Valid() {
		cfg.Language = lang
	}

	r.mu.Lock()
	if r.config.MaxSessions > 0 && len(r.sessions) >= r.config.MaxSessions {
		r.mu.Unlock()
		return nil, model.NewSessionLimitError(r.config.MaxSessions)
	}
	id := uuid.New().String()
	s := NewSession(id, r.deps, cfg)
	r.sessions[id] = s
	count := len(r.sessions)
	r.mu.Unlock()

	r.report(count)
	r.logger.Info("セッションを作成しました",
		slog.String("session_id", id),
		slog.Int("active_sessions", count),
	)

	s.Start()
	return s, nil
}

// Get はセッションを取得する。存在しない場合はSESSION_NOT_FOUNDエラーを返す。
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, model.NewSessionNotFoundError(id)
	}
	return s, nil
}

// Delete はセッションを閉じて削除する。
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	count := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return model.NewSessionNotFoundError(id)
	}
	s.Close()
	r.report(count)
	return nil
}

// Count は現在のセッション数を返す。
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Stop は掃除を停止し、すべてのセッションを閉じる。
func (r *Registry) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)

		r.mu.Lock()
		sessions := r.sessions
		r.sessions = make(map[string]*Session)
		r.mu.Unlock()

		for _, s := range sessions {
			s.Close()
		}
		r.report(0)
	})
}

func (r *Registry) sweepLoop() {
	ticker := time.NewTicker(r.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep(time.Now())
		case <-r.stopCh:
			return
		}
	}
}

// sweep は最終操作からIdleTTLを超えたセッションを閉じて削除する。
func (r *Registry) sweep(now time.Time) int {
	var expired []*Session

	r.mu.Lock()
	for id, s := range r.sessions {
		if now.Sub(s.LastAccess()) > r.config.IdleTTL {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	count := len(r.sessions)
	r.mu.Unlock()

	if len(expired) == 0 {
		return 0
	}

	for _, s := range expired {
		s.Close()
	}
	r.report(count)
	r.logger.Info("期限切れのセッションを削除しました",
		slog.Int("expired", len(expired)),
		slog.Int("active_sessions", count),
	)
	return len(expired)
}

func (r *Registry) report(count int) {
	if r.gauge != nil {
		r.gauge.SetActiveSessions(count)
	}
}
