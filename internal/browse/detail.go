package browse

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/livsmedel/internal/model"
)

// DefaultTransition は詳細パネルのフェードアウトに使う待ち時間。
const DefaultTransition = 100 * time.Millisecond

// DetailConfig はDetailOrchestratorの設定。
type DetailConfig struct {
	// FetchItem がtrueの場合、栄養価の前に食品レコード全体を取得する。
	FetchItem bool
	// Transition は取得開始前の待ち時間。0の場合は待たない。
	Transition time.Duration
}

// DetailState は詳細パネルの状態のスナップショット。
type DetailState struct {
	Status model.LoadStatus
	// Item は選択中の食品。取得完了後はレコード全体に置き換わる。
	Item *model.FoodItem
	// Nutrients は取得した栄養価一覧。取得のたびに丸ごと置き換える。
	Nutrients []model.NutrientValue
	Summary   []MacroNutrient
	Error     string
	// Transitioning はフェード中であることを示す表示用のフラグ。
	Transitioning bool
}

// DetailOrchestrator は詳細の読み込み状態機械。
// 食品の選択ごとに単調増加のシーケンス番号を振り、最新の選択の結果だけを反映する。
type DetailOrchestrator struct {
	fetcher  DetailFetcher
	logger   *slog.Logger
	recorder Recorder
	config   DetailConfig

	mu    sync.Mutex
	seq   uint64
	state DetailState
}

// NewDetailOrchestrator はidle状態のDetailOrchestratorを生成する。
func NewDetailOrchestrator(fetcher DetailFetcher, logger *slog.Logger, recorder Recorder, config DetailConfig) *DetailOrchestrator {
	return &DetailOrchestrator{
		fetcher:  fetcher,
		logger:   logger,
		recorder: recorder,
		config:   config,
		state:    DetailState{Status: model.LoadStatusIdle},
	}
}

// State は現在の状態を返す。
func (o *DetailOrchestrator) State() DetailState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// DetailRequest は発行済みの詳細リクエスト。Runで実行する。
type DetailRequest struct {
	o    *DetailOrchestrator
	seq  uint64
	item model.FoodItem
	lang model.Language
}

// Begin はシーケンス番号を採番してloading状態へ遷移し、実行前のリクエストを返す。
func (o *DetailOrchestrator) Begin(item model.FoodItem, lang model.Language) *DetailRequest {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.seq++
	selected := item
	o.state.Status = model.LoadStatusLoading
	o.state.Item = &selected
	o.state.Error = ""
	o.state.Transitioning = o.config.Transition > 0
	return &DetailRequest{o: o, seq: o.seq, item: item, lang: lang}
}

// Load はBeginとRunを続けて実行する。
func (o *DetailOrchestrator) Load(ctx context.Context, item model.FoodItem, lang model.Language) bool {
	return o.Begin(item, lang).Run(ctx)
}

// Run は選択された食品の詳細を取得する。
// より新しい選択が発行済みの場合は結果を破棄してfalseを返す。
func (r *DetailRequest) Run(ctx context.Context) bool {
	o := r.o
	item, lang := r.item, r.lang

	if o.config.Transition > 0 {
		timer := time.NewTimer(o.config.Transition)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
		o.mu.Lock()
		if r.seq == o.seq {
			o.state.Transitioning = false
		}
		o.mu.Unlock()
	}

	full, nutrients, err := o.fetch(ctx, item, lang)

	o.mu.Lock()
	defer o.mu.Unlock()

	if r.seq != o.seq {
		o.logger.Debug("古い詳細レスポンスを破棄しました",
			slog.Uint64("seq", r.seq),
			slog.Uint64("latest_seq", o.seq),
			slog.Int("nummer", item.Nummer),
		)
		if o.recorder != nil {
			o.recorder.RecordStaleResponse(orchestratorDetail)
		}
		return false
	}

	o.state.Transitioning = false

	if err != nil {
		o.state.Status = model.LoadStatusError
		o.state.Error = model.NewDetailFetchFailedError(lang, item.DisplayName()).Message
		o.state.Nutrients = nil
		o.state.Summary = nil
		o.logger.Error("食品詳細の取得に失敗しました",
			slog.Int("nummer", item.Nummer),
			slog.Int("language", int(lang)),
			slog.String("error", err.Error()),
		)
		return true
	}

	full.Nutrients = nutrients
	o.state.Status = model.LoadStatusSuccess
	o.state.Item = full
	o.state.Nutrients = nutrients
	o.state.Summary = MacroSummary(nutrients, lang)
	return true
}

// fetch は食品レコード（設定時）と栄養価一覧を順に取得する。
func (o *DetailOrchestrator) fetch(ctx context.Context, item model.FoodItem, lang model.Language) (*model.FoodItem, []model.NutrientValue, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	full := item
	if o.config.FetchItem {
		fetched, err := o.fetcher.GetItem(ctx, item.Nummer, lang)
		if err != nil {
			return nil, nil, err
		}
		full = *fetched
	}

	nutrients, err := o.fetcher.GetNutrients(ctx, item.Nummer, lang)
	if err != nil {
		return nil, nil, err
	}
	return &full, nutrients, nil
}
