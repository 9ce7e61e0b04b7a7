package browse

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/livsmedel/internal/model"
)

var errCatalogDown = errors.New("catalog down")

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// fakeCatalog はCatalogのモック実装。各関数が未設定の場合はクエリから生成した結果を返す。
type fakeCatalog struct {
	mu            sync.Mutex
	listCalls     []model.Query
	itemCalls     []int
	nutrientCalls []int
	listFunc      func(ctx context.Context, q model.Query) (*model.Page, error)
	itemFunc      func(ctx context.Context, nummer int, lang model.Language) (*model.FoodItem, error)
	nutrientsFunc func(ctx context.Context, nummer int, lang model.Language) ([]model.NutrientValue, error)
}

func (c *fakeCatalog) ListItems(ctx context.Context, q model.Query) (*model.Page, error) {
	c.mu.Lock()
	c.listCalls = append(c.listCalls, q)
	fn := c.listFunc
	c.mu.Unlock()

	if fn != nil {
		return fn(ctx, q)
	}
	return pageFor(q, 100), nil
}

func (c *fakeCatalog) GetItem(ctx context.Context, nummer int, lang model.Language) (*model.FoodItem, error) {
	c.mu.Lock()
	c.itemCalls = append(c.itemCalls, nummer)
	fn := c.itemFunc
	c.mu.Unlock()

	if fn != nil {
		return fn(ctx, nummer, lang)
	}
	return &model.FoodItem{Nummer: nummer, Name: itemName(nummer), GroupLabel: "Mejeri"}, nil
}

func (c *fakeCatalog) GetNutrients(ctx context.Context, nummer int, lang model.Language) ([]model.NutrientValue, error) {
	c.mu.Lock()
	c.nutrientCalls = append(c.nutrientCalls, nummer)
	fn := c.nutrientsFunc
	c.mu.Unlock()

	if fn != nil {
		return fn(ctx, nummer, lang)
	}
	return sampleNutrients(), nil
}

func (c *fakeCatalog) ListCalls() []model.Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Query, len(c.listCalls))
	copy(out, c.listCalls)
	return out
}

func (c *fakeCatalog) NutrientCalls() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]int, len(c.nutrientCalls))
	copy(out, c.nutrientCalls)
	return out
}

func itemName(nummer int) string {
	return "Livsmedel " + model.FoodItem{Nummer: nummer}.DisplayName()
}

// pageFor はクエリに対応する1ページ分の食品を生成する。
func pageFor(q model.Query, total int) *model.Page {
	items := []model.FoodItem{}
	for n := q.Offset + 1; n <= q.Offset+q.Limit && n <= total; n++ {
		items = append(items, model.FoodItem{Nummer: n, Name: itemName(n)})
	}
	return &model.Page{
		Meta: model.Meta{
			TotalRecords: total,
			Offset:       q.Offset,
			Limit:        q.Limit,
			Count:        len(items),
		},
		Items: items,
	}
}

func sampleNutrients() []model.NutrientValue {
	return []model.NutrientValue{
		{Name: "Energi (kcal)", EuroFIRCode: "ENERC", Value: 250, Unit: "kcal"},
		{Name: "Energi (kJ)", EuroFIRCode: "ENERC_KJ", Value: 1046, Unit: "kJ"},
		{Name: "Protein", EuroFIRCode: "PROT", Value: 3.4, Unit: "g"},
		{Name: "Fett, totalt", EuroFIRCode: "FAT", Value: 1.5, Unit: "g"},
		{Name: "Kolhydrater, tillgängliga", EuroFIRCode: "CHO", Value: 4.8, Unit: "g"},
		{Name: "Natrium", EuroFIRCode: "NA", Value: 40, Unit: "mg"},
	}
}

// mockRecorder はRecorderとSessionGaugeのモック実装。
type mockRecorder struct {
	mu       sync.Mutex
	stale    map[string]int
	commits  int
	sessions []int
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{stale: make(map[string]int)}
}

func (m *mockRecorder) RecordStaleResponse(orchestrator string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stale[orchestrator]++
}

func (m *mockRecorder) RecordSearchCommit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commits++
}

func (m *mockRecorder) SetActiveSessions(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, n)
}

func (m *mockRecorder) Stale(orchestrator string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stale[orchestrator]
}

func (m *mockRecorder) Commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commits
}

func (m *mockRecorder) LastActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sessions) == 0 {
		return -1
	}
	return m.sessions[len(m.sessions)-1]
}

// fakeClock は時間を明示的に進めるAfterFuncの実装。
type fakeClock struct {
	mu    sync.Mutex
	tasks []*fakeTask
}

type fakeTask struct {
	clock    *fakeClock
	d        time.Duration
	f        func()
	stopped  bool
	finished bool
}

func (t *fakeTask) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.finished {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTask{clock: c, d: d, f: f}
	c.tasks = append(c.tasks, t)
	return t
}

// FireAll は停止されていない未実行のタスクをすべて実行する。
func (c *fakeClock) FireAll() int {
	c.mu.Lock()
	var due []*fakeTask
	for _, t := range c.tasks {
		if !t.stopped && !t.finished {
			t.finished = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
	return len(due)
}

// Scheduled は登録されたタスクの数を返す。
func (c *fakeClock) Scheduled() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tasks)
}

// Active は停止も実行もされていないタスクの数を返す。
func (c *fakeClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.tasks {
		if !t.stopped && !t.finished {
			n++
		}
	}
	return n
}

// LastInterval は最後に登録されたタスクの待ち時間を返す。
func (c *fakeClock) LastInterval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.tasks) == 0 {
		return 0
	}
	return c.tasks[len(c.tasks)-1].d
}
