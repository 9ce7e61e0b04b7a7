package browse

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/livsmedel/internal/model"
)

// SearchListener は検索テキストが確定したときに通知を受け取る。
// 呼び出し元をブロックしないよう、実装側で非同期に処理すること。
type SearchListener interface {
	SearchCommitted(sessionID string, q model.Query)
}

// SessionConfig はSessionの設定。
type SessionConfig struct {
	// PageSize は1ページあたりの件数（デフォルト: 20）。
	PageSize int
	// Language は初期言語（デフォルト: スウェーデン語）。
	Language model.Language
	// DebounceInterval は検索入力の静止時間（デフォルト: 500ms）。
	DebounceInterval time.Duration
	// RequestTimeout は1回の読み込みのタイムアウト。0の場合はタイムアウトしない。
	RequestTimeout time.Duration
	// Detail は詳細読み込みの設定。
	Detail DetailConfig
}

// SessionDeps はSessionの依存関係。
type SessionDeps struct {
	Catalog  Catalog
	Logger   *slog.Logger
	Recorder Recorder
	Listener SearchListener
	// OnChange は読み込みの完了や検索の確定のたびに呼ばれる。nilでもよい。
	OnChange func()

	afterFunc AfterFunc
}

// Session は閲覧セッション全体の状態コンテナ。
// ページング、確定済み検索テキスト、言語、デバウンサー、一覧と詳細の
// オーケストレーター、選択中の食品を所有する。
// 一覧クエリは (offset, limit, language, search) の変更時にのみ発行され、
// 直前と同じクエリでは再取得しない。
type Session struct {
	id        string
	logger    *slog.Logger
	recorder  Recorder
	listener  SearchListener
	list      *ListOrchestrator
	detail    *DetailOrchestrator
	debouncer *Debouncer
	timeout   time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	// 実行中の読み込み数。Waitの待機中にも増えることがある。
	loadsMu   sync.Mutex
	loadsCond *sync.Cond
	loads     int

	mu         sync.Mutex
	onChange   func()
	pager      *Pagination
	language   model.Language
	search     string
	issued     *model.Query
	selected   *model.FoodItem
	lastAccess time.Time
	closed     bool
}

// NewSession は新しいSessionを生成する。最初の一覧取得はStartで開始する。
func NewSession(id string, deps SessionDeps, cfg SessionConfig) *Session {
	lang := cfg.Language
	if !lang.Valid() {
		lang = model.DefaultLanguage
	}
	afterFunc := deps.afterFunc
	if afterFunc == nil {
		afterFunc = realAfterFunc
	}

	ctx, cancel := context.WithCancel(context.Background())
	logger := deps.Logger.With(slog.String("session_id", id))

	s := &Session{
		id:         id,
		logger:     logger,
		recorder:   deps.Recorder,
		listener:   deps.Listener,
		list:       NewListOrchestrator(deps.Catalog, logger, deps.Recorder),
		detail:     NewDetailOrchestrator(deps.Catalog, logger, deps.Recorder, cfg.Detail),
		timeout:    cfg.RequestTimeout,
		ctx:        ctx,
		cancel:     cancel,
		onChange:   deps.OnChange,
		pager:      NewPagination(cfg.PageSize),
		language:   lang,
		lastAccess: time.Now(),
	}
	s.loadsCond = sync.NewCond(&s.loadsMu)
	s.debouncer = newDebouncer(cfg.DebounceInterval, func(text string) { s.CommitSearch(text) }, afterFunc)
	return s
}

// ID はセッションIDを返す。
func (s *Session) ID() string {
	return s.id
}

// SetOnChange は変更通知のコールバックを差し替える。
func (s *Session) SetOnChange(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = f
}

// Start は現在のクエリで最初の一覧取得を開始する。
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.applyQueryLocked()
}

// InputSearch はキー入力ごとの検索テキストを受け取り、デバウンサーに渡す。
func (s *Session) InputSearch(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.touchLocked()
	s.mu.Unlock()

	s.debouncer.Input(text)
}

// FlushSearch は保留中の検索入力を即座に確定する。
func (s *Session) FlushSearch() bool {
	return s.debouncer.Flush()
}

// CommitSearch は検索テキストを確定する。
// 確定済みの値と同じ場合は何もしない。異なる場合は先頭ページに戻し、新しいクエリを発行する。
func (s *Session) CommitSearch(text string) bool {
	s.mu.Lock()
	if s.closed || text == s.search {
		s.mu.Unlock()
		return false
	}
	s.touchLocked()
	s.search = text
	s.pager.Reset()
	q, _ := s.applyQueryLocked()
	onChange := s.onChange
	s.mu.Unlock()

	s.logger.Info("検索テキストを確定しました",
		slog.String("search", text),
		slog.Int("language", int(q.Language)),
	)
	if s.recorder != nil {
		s.recorder.RecordSearchCommit()
	}
	if s.listener != nil {
		s.listener.SearchCommitted(s.id, q)
	}
	if onChange != nil {
		onChange()
	}
	return true
}

// NextPage は次のページへ進む。一覧の読み込み中は何もせずfalseを返す。
func (s *Session) NextPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.list.Loading() {
		return false
	}
	s.touchLocked()
	s.pager.Next()
	s.applyQueryLocked()
	return true
}

// PrevPage は前のページへ戻る。先頭ページでは何もせずfalseを返す。
func (s *Session) PrevPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.touchLocked()
	if !s.pager.Prev() {
		return false
	}
	s.applyQueryLocked()
	return true
}

// SetLanguage は言語を切り替える。同じ言語の場合は何もしない。
// 食品を選択中の場合は、その詳細も新しい言語で読み込み直す。
func (s *Session) SetLanguage(lang model.Language) error {
	if !lang.Valid() {
		return model.NewInvalidLanguageError(int(lang))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || lang == s.language {
		return nil
	}
	s.touchLocked()
	s.language = lang
	s.applyQueryLocked()

	// 詳細パネルも一覧と同じ言語で取り直す
	if s.selected != nil {
		req := s.detail.Begin(*s.selected, lang)
		s.spawnLocked(func(ctx context.Context) { req.Run(ctx) })
	}
	return nil
}

// Language は現在の言語を返す。
func (s *Session) Language() model.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// Select は食品を選択し、詳細の読み込みを開始する。
// 選択は一覧の再読み込みでは解除されず、次の選択でのみ置き換わる。
func (s *Session) Select(item model.FoodItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.touchLocked()
	selected := item
	s.selected = &selected

	req := s.detail.Begin(item, s.language)
	s.spawnLocked(func(ctx context.Context) { req.Run(ctx) })
}

// SelectByNummer は現在のページにある食品を番号で選択する。
func (s *Session) SelectByNummer(nummer int) error {
	page := s.list.State().Page
	if page == nil {
		return model.NewItemNotFoundError(nummer)
	}
	item, ok := page.Find(nummer)
	if !ok {
		return model.NewItemNotFoundError(nummer)
	}
	s.Select(item)
	return nil
}

// Wait は開始済みのすべての読み込みの完了を待つ。
func (s *Session) Wait() {
	s.loadsMu.Lock()
	defer s.loadsMu.Unlock()
	for s.loads > 0 {
		s.loadsCond.Wait()
	}
}

// LastAccess は最後に操作された時刻を返す。
func (s *Session) LastAccess() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}

// Close は保留中の検索入力を破棄し、実行中の読み込みをキャンセルする。
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.debouncer.Stop()
	s.cancel()
}

// Query は現在のクエリを返す。
func (s *Session) Query() model.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentQueryLocked()
}

func (s *Session) currentQueryLocked() model.Query {
	return model.Query{
		Offset:   s.pager.Offset(),
		Limit:    s.pager.Limit(),
		Language: s.language,
		Search:   s.search,
	}
}

// applyQueryLocked は現在のクエリが直前に発行したものと異なる場合にのみ一覧取得を開始する。
func (s *Session) applyQueryLocked() (model.Query, bool) {
	q := s.currentQueryLocked()
	if s.issued != nil && *s.issued == q {
		return q, false
	}
	s.issued = &q

	req := s.list.Begin(q)
	s.spawnLocked(func(ctx context.Context) { req.Run(ctx) })
	return q, true
}

// spawnLocked は読み込みを別goroutineで実行し、完了後に変更を通知する。
func (s *Session) spawnLocked(run func(ctx context.Context)) {
	s.loadsMu.Lock()
	s.loads++
	s.loadsMu.Unlock()

	go func() {
		defer s.doneLoad()

		ctx := s.ctx
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		run(ctx)

		s.mu.Lock()
		onChange := s.onChange
		s.mu.Unlock()
		if onChange != nil {
			onChange()
		}
	}()
}

func (s *Session) doneLoad() {
	s.loadsMu.Lock()
	defer s.loadsMu.Unlock()
	s.loads--
	if s.loads == 0 {
		s.loadsCond.Broadcast()
	}
}

func (s *Session) touchLocked() {
	s.lastAccess = time.Now()
}
