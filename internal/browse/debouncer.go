package browse

import (
	"sync"
	"time"
)

// DefaultDebounceInterval は検索入力を確定するまでの静止時間。
const DefaultDebounceInterval = 500 * time.Millisecond

// Timer はスケジュール済みタスクのハンドル。*time.Timer が満たす。
type Timer interface {
	Stop() bool
}

// AfterFunc はdの経過後にfを実行するタスクをスケジュールする。
// テストでは時間を明示的に進めるフェイクに差し替える。
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer は後縁デバウンスで検索テキストを確定する。
// 静止時間内に新しい入力があると保留中の確定を取り消し、新しい値でタイマーを再開する。
// タイマーハンドルはDebouncerだけが所有する。
type Debouncer struct {
	interval  time.Duration
	afterFunc AfterFunc
	commit    func(string)

	mu      sync.Mutex
	timer   Timer
	pending string
	armed   bool
	gen     uint64
	stopped bool
}

// NewDebouncer はDebouncerを生成する。commitは確定時に1回だけ呼ばれる。
// intervalが0以下の場合はDefaultDebounceIntervalを使用する。
func NewDebouncer(interval time.Duration, commit func(string)) *Debouncer {
	return newDebouncer(interval, commit, realAfterFunc)
}

func newDebouncer(interval time.Duration, commit func(string), afterFunc AfterFunc) *Debouncer {
	if interval <= 0 {
		interval = DefaultDebounceInterval
	}
	return &Debouncer{
		interval:  interval,
		afterFunc: afterFunc,
		commit:    commit,
	}
}

// Input はキー入力ごとの生の値を受け取る。
func (d *Debouncer) Input(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = text
	d.armed = true
	d.timer = d.afterFunc(d.interval, func() { d.fire(gen) })
}

// fire はタイマー満了時に呼ばれる。世代が古い場合は何もしない。
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || !d.armed || gen != d.gen {
		d.mu.Unlock()
		return
	}
	text := d.pending
	d.armed = false
	d.timer = nil
	d.mu.Unlock()

	d.commit(text)
}

// Flush は保留中の値があれば即座に確定する。確定した場合はtrueを返す。
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.stopped || !d.armed {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	text := d.pending
	d.armed = false
	d.timer = nil
	d.mu.Unlock()

	d.commit(text)
	return true
}

// Pending は確定待ちの値があるかを返す。
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed
}

// Stop は保留中の確定を破棄し、以降の入力を無視する。
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	d.armed = false
	d.timer = nil
	d.stopped = true
}
