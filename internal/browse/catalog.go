// Package browse は食品カタログの閲覧セッションを提供する。
// 検索入力のデバウンス、ページング、一覧と詳細の読み込みオーケストレーションを
// 明示的な状態オブジェクトとして持ち、TUI・HTTP・CLIのいずれのドライバからも利用できる。
package browse

import (
	"context"

	"github.com/hitoshi/livsmedel/internal/model"
)

// PageFetcher は一覧ページの取得インターフェース。
type PageFetcher interface {
	ListItems(ctx context.Context, q model.Query) (*model.Page, error)
}

// DetailFetcher は食品1件と栄養価一覧の取得インターフェース。
type DetailFetcher interface {
	GetItem(ctx context.Context, nummer int, lang model.Language) (*model.FoodItem, error)
	GetNutrients(ctx context.Context, nummer int, lang model.Language) ([]model.NutrientValue, error)
}

// Catalog はカタログサービスの全操作。*catalog.Client が満たす。
type Catalog interface {
	PageFetcher
	DetailFetcher
}

// Recorder はオーケストレーションのメトリクス記録インターフェース。
type Recorder interface {
	// RecordStaleResponse は破棄した古いレスポンスを記録する。
	RecordStaleResponse(orchestrator string)
	// RecordSearchCommit は確定した検索を記録する。
	RecordSearchCommit()
}

const (
	orchestratorList   = "list"
	orchestratorDetail = "detail"
)
