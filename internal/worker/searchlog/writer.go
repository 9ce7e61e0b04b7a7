// Package searchlog は確定した検索クエリを非同期に検索ログへ書き込むワーカーを提供する。
// 閲覧セッションからの通知はバッファ付きチャネルに積むだけで、DB書き込みを待たない。
package searchlog

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/livsmedel/internal/model"
	"github.com/hitoshi/livsmedel/internal/repository"
)

const (
	// DefaultBufferSize は書き込み待ちイベントの最大数。
	DefaultBufferSize = 256
	// insertTimeout は1件の書き込みのタイムアウト。
	insertTimeout = 5 * time.Second
	// drainTimeout は停止時に残りのイベントを書き込む時間の上限。
	drainTimeout = 10 * time.Second
)

// Writer は検索ログの非同期書き込みワーカー。browse.SearchListener を満たす。
type Writer struct {
	repo   repository.SearchEventRepository
	logger *slog.Logger
	events chan *model.SearchEvent
	now    func() time.Time

	mu      sync.RWMutex
	stopped bool

	written atomic.Int64
	dropped atomic.Int64
}

// NewWriter は新しいWriterを生成する。bufferSizeが0以下の場合はDefaultBufferSizeを使う。
// 書き込みはStartを呼ぶまで開始されない。
func NewWriter(repo repository.SearchEventRepository, logger *slog.Logger, bufferSize int) *Writer {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Writer{
		repo:   repo,
		logger: logger,
		events: make(chan *model.SearchEvent, bufferSize),
		now:    time.Now,
	}
}

// SearchCommitted は確定した検索をキューに積む。ブロックせず、キューが満杯の場合は破棄する。
func (w *Writer) SearchCommitted(sessionID string, q model.Query) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return
	}

	event := &model.SearchEvent{
		ID:         uuid.New().String(),
		SessionID:  sessionID,
		Query:      q,
		OccurredAt: w.now(),
	}

	select {
	case w.events <- event:
	default:
		w.dropped.Add(1)
		w.logger.Warn("検索ログのキューが満杯のため破棄しました",
			slog.String("session_id", sessionID),
		)
	}
}

// Start はキューの書き込みを開始する。ctxがキャンセルされるまでブロックし、
// キャンセル後は受付を止めてキューに残ったイベントを書き込んでから戻る。
func (w *Writer) Start(ctx context.Context) {
	w.logger.Info("検索ログの書き込みを開始しました",
		slog.Int("buffer_size", cap(w.events)),
	)

	for {
		select {
		case <-ctx.Done():
			w.stop()
			w.drain()
			w.logger.Info("検索ログの書き込みを停止しました",
				slog.Int64("written", w.written.Load()),
				slog.Int64("dropped", w.dropped.Load()),
			)
			return
		case event := <-w.events:
			w.insert(ctx, event)
		}
	}
}

// Written は書き込みに成功したイベント数を返す。
func (w *Writer) Written() int64 {
	return w.written.Load()
}

// Dropped はキュー満杯で破棄したイベント数を返す。
func (w *Writer) Dropped() int64 {
	return w.dropped.Load()
}

func (w *Writer) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
}

// drain は停止後にキューに残ったイベントを書き込む。
func (w *Writer) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for {
		select {
		case event := <-w.events:
			w.insert(ctx, event)
		default:
			return
		}
	}
}

func (w *Writer) insert(ctx context.Context, event *model.SearchEvent) {
	ctx, cancel := context.WithTimeout(ctx, insertTimeout)
	defer cancel()

	if err := w.repo.Insert(ctx, event); err != nil {
		w.logger.Error("検索ログの書き込みに失敗しました",
			slog.String("session_id", event.SessionID),
			slog.String("error", err.Error()),
		)
		return
	}
	w.written.Add(1)
}
