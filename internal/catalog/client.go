// Package catalog はLivsmedelsverketの食品データベースAPI（カタログサービス）の
// クライアントを提供する。一覧取得、食品1件取得、栄養価一覧取得の3操作のみを持つ読み取り専用クライアント。
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/livsmedel/internal/model"
)

const (
	// DefaultBaseURL はカタログサービスのベースURL。
	DefaultBaseURL = "https://dataportal.livsmedelsverket.se/livsmedel"
	// apiPrefix はAPIバージョンを含むパスプレフィックス。
	apiPrefix = "/api/v1"
	// searchParam は一覧取得時の検索テキストのクエリパラメータ名。
	searchParam = "namn"
	// defaultMaxBodySize はレスポンスボディの最大サイズ（5MB）。
	defaultMaxBodySize = 5 << 20
	// userAgent はカタログAPI呼び出し時のUser-Agent。
	userAgent = "Livsmedel/1.0 catalog browser"
)

// 操作名。メトリクスとログのラベルに使用する。
const (
	OperationList      = "list"
	OperationItem      = "item"
	OperationNutrients = "nutrients"
)

// ErrFetchFailed はカタログ取得失敗を表す唯一のエラー種別。
// HTTPステータス、通信エラー、JSONパース失敗はすべてこのエラーでラップされる。
var ErrFetchFailed = errors.New("catalog fetch failed")

// Recorder はカタログリクエストの結果を記録するインターフェース。
type Recorder interface {
	RecordCatalogRequest(operation string, statusCode int, success bool, duration time.Duration)
}

// TextSanitizer は表示用テキストから不要なマークアップを除去するインターフェース。
type TextSanitizer interface {
	SanitizeText(s string) string
}

// Config はClientの設定。
type Config struct {
	// BaseURL はカタログサービスのベースURL（デフォルト: DefaultBaseURL）。
	BaseURL string
	// MaxBodySize はレスポンスボディの最大サイズ（デフォルト: 5MB）。
	MaxBodySize int64
	// Limiter は送信リクエストのレート制限。nilの場合は制限しない。
	Limiter *rate.Limiter
	// Recorder はメトリクスの記録先。nilの場合は記録しない。
	Recorder Recorder
	// Sanitizer は食品名などの表示用テキストに適用する。nilの場合はそのまま返す。
	Sanitizer TextSanitizer
}

// Client はカタログサービスのクライアント。
type Client struct {
	httpClient  *http.Client
	logger      *slog.Logger
	baseURL     string
	maxBodySize int64
	limiter     *rate.Limiter
	recorder    Recorder
	sanitizer   TextSanitizer
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	maxBodySize := cfg.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}
	return &Client{
		httpClient:  httpClient,
		logger:      logger,
		baseURL:     baseURL,
		maxBodySize: maxBodySize,
		limiter:     cfg.Limiter,
		recorder:    cfg.Recorder,
		sanitizer:   cfg.Sanitizer,
	}
}

// ListItems は食品一覧の1ページを取得する。
// 検索テキストが空の場合はフィルタなしで取得する。
func (c *Client) ListItems(ctx context.Context, q model.Query) (*model.Page, error) {
	params := url.Values{}
	params.Set("offset", strconv.Itoa(q.Offset))
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("sprak", strconv.Itoa(int(q.Language)))
	if search := strings.TrimSpace(q.Search); search != "" {
		params.Set(searchParam, search)
	}

	var page model.Page
	if err := c.getJSON(ctx, OperationList, "/livsmedel", params, &page); err != nil {
		return nil, err
	}

	if page.Items == nil {
		page.Items = []model.FoodItem{}
	}
	for i := range page.Items {
		c.sanitizeItem(&page.Items[i])
	}

	return &page, nil
}

// GetItem は食品1件を番号で取得する。
func (c *Client) GetItem(ctx context.Context, nummer int, lang model.Language) (*model.FoodItem, error) {
	params := url.Values{}
	params.Set("sprak", strconv.Itoa(int(lang)))

	var item model.FoodItem
	path := "/livsmedel/" + strconv.Itoa(nummer)
	if err := c.getJSON(ctx, OperationItem, path, params, &item); err != nil {
		return nil, err
	}

	c.sanitizeItem(&item)
	return &item, nil
}

// GetNutrients は食品の栄養価一覧を取得する。順序はAPIの応答順を維持する。
func (c *Client) GetNutrients(ctx context.Context, nummer int, lang model.Language) ([]model.NutrientValue, error) {
	params := url.Values{}
	params.Set("sprak", strconv.Itoa(int(lang)))

	var nutrients []model.NutrientValue
	path := "/livsmedel/" + strconv.Itoa(nummer) + "/naringsvarden"
	if err := c.getJSON(ctx, OperationNutrients, path, params, &nutrients); err != nil {
		return nil, err
	}

	if nutrients == nil {
		nutrients = []model.NutrientValue{}
	}
	return nutrients, nil
}

// getJSON はGETリクエストを送信し、成功時はレスポンスをoutにデコードする。
// 失敗はすべてErrFetchFailedでラップして返す。
func (c *Client) getJSON(ctx context.Context, operation, path string, params url.Values, out any) error {
	start := time.Now()
	statusCode := 0

	fail := func(reason string, err error, attrs ...slog.Attr) error {
		c.record(operation, statusCode, false, time.Since(start))
		args := []any{
			slog.String("operation", operation),
			slog.String("path", path),
			slog.String("error", err.Error()),
		}
		for _, a := range attrs {
			args = append(args, a)
		}
		c.logger.Error(reason, args...)
		return fmt.Errorf("%w: %s: %w", ErrFetchFailed, operation, err)
	}

	// 送信レート制限
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fail("カタログAPIのレート制限待機が中断されました", err)
		}
	}

	reqURL, err := url.Parse(c.baseURL + apiPrefix + path)
	if err != nil {
		return fail("カタログAPIのURL構築に失敗しました", err)
	}
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fail("HTTPリクエストの作成に失敗しました", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail("カタログAPIの呼び出しに失敗しました", err)
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	// 2xx以外はステータスを区別せず一律に失敗として扱う
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail("カタログAPIがエラーステータスを返しました",
			fmt.Errorf("unexpected status %d", resp.StatusCode),
			slog.Int("http_status", resp.StatusCode),
		)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return fail("レスポンスボディの読み取りに失敗しました", err)
	}
	if int64(len(body)) > c.maxBodySize {
		return fail("レスポンスボディが上限サイズを超えています",
			fmt.Errorf("response body exceeds %d bytes", c.maxBodySize),
		)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fail("カタログAPIのレスポンスのパースに失敗しました", err)
	}

	c.record(operation, statusCode, true, time.Since(start))
	c.logger.Debug("カタログAPIの呼び出しが完了しました",
		slog.String("operation", operation),
		slog.String("path", path),
		slog.Int("http_status", statusCode),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return nil
}

func (c *Client) record(operation string, statusCode int, success bool, d time.Duration) {
	if c.recorder != nil {
		c.recorder.RecordCatalogRequest(operation, statusCode, success, d)
	}
}

// sanitizeItem は表示用テキスト（食品名、食品群名）のみを整形する。
// 栄養価と出典情報は加工しない。
func (c *Client) sanitizeItem(item *model.FoodItem) {
	if c.sanitizer == nil {
		return
	}
	item.Name = c.sanitizer.SanitizeText(item.Name)
	item.GroupLabel = c.sanitizer.SanitizeText(item.GroupLabel)
}
