package browse

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hitoshi/livsmedel/internal/model"
)

// ListState は一覧ビューの状態のスナップショット。
type ListState struct {
	Status model.LoadStatus
	// Page は最後に成功したページ。失敗時も直前のページを保持する。
	Page *model.Page
	// Query はPageを取得したクエリ。
	Query model.Query
	// Error はユーザー向けの固定メッセージ。Statusがerrorのときのみ設定される。
	Error string
}

// ListOrchestrator は一覧の読み込み状態機械。
// idle → loading → (success | error) と遷移し、クエリが変わるたびにloadingへ戻る。
// リクエストごとに単調増加のシーケンス番号を振り、最新でない完了は破棄する。
type ListOrchestrator struct {
	fetcher  PageFetcher
	logger   *slog.Logger
	recorder Recorder

	mu    sync.Mutex
	seq   uint64
	state ListState
}

// NewListOrchestrator はidle状態のListOrchestratorを生成する。
func NewListOrchestrator(fetcher PageFetcher, logger *slog.Logger, recorder Recorder) *ListOrchestrator {
	return &ListOrchestrator{
		fetcher:  fetcher,
		logger:   logger,
		recorder: recorder,
		state:    ListState{Status: model.LoadStatusIdle},
	}
}

// State は現在の状態を返す。
func (o *ListOrchestrator) State() ListState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Loading は読み込み中かどうかを返す。
func (o *ListOrchestrator) Loading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Status.IsLoading()
}

// ListRequest は発行済みの一覧リクエスト。Runで実行する。
type ListRequest struct {
	o     *ListOrchestrator
	seq   uint64
	query model.Query
}

// Begin はシーケンス番号を採番してloading状態へ遷移し、実行前のリクエストを返す。
// 採番は呼び出し順に行われるため、発行順がそのまま新旧の判定に使われる。
func (o *ListOrchestrator) Begin(q model.Query) *ListRequest {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.seq++
	o.state.Status = model.LoadStatusLoading
	o.state.Error = ""
	return &ListRequest{o: o, seq: o.seq, query: q}
}

// Load はBeginとRunを続けて実行する。
func (o *ListOrchestrator) Load(ctx context.Context, q model.Query) bool {
	return o.Begin(q).Run(ctx)
}

// Run は一覧を取得し、結果を状態に反映する。
// 実行中のリクエストは明示的にキャンセルしないが、より新しいリクエストが発行済みの場合は
// 結果を破棄してfalseを返す。
func (r *ListRequest) Run(ctx context.Context) bool {
	o := r.o
	q := r.query

	page, err := o.fetcher.ListItems(ctx, q)

	o.mu.Lock()
	defer o.mu.Unlock()

	if r.seq != o.seq {
		o.logger.Debug("古い一覧レスポンスを破棄しました",
			slog.Uint64("seq", r.seq),
			slog.Uint64("latest_seq", o.seq),
			slog.Int("offset", q.Offset),
			slog.String("search", q.Search),
		)
		if o.recorder != nil {
			o.recorder.RecordStaleResponse(orchestratorList)
		}
		return false
	}

	if err != nil {
		// 直前のページは表示したままエラーを重ねる
		o.state.Status = model.LoadStatusError
		o.state.Error = model.NewListFetchFailedError(q.Language).Message
		o.logger.Error("一覧の取得に失敗しました",
			slog.Int("offset", q.Offset),
			slog.Int("limit", q.Limit),
			slog.Int("language", int(q.Language)),
			slog.String("search", q.Search),
			slog.String("error", err.Error()),
		)
		return true
	}

	o.state.Status = model.LoadStatusSuccess
	o.state.Page = page
	o.state.Query = q
	return true
}
