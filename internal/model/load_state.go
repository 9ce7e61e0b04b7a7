package model

// LoadStatus は一覧ビューと詳細ビューそれぞれの読み込み状態を表す。
type LoadStatus string

const (
	// LoadStatusIdle はまだ一度も読み込みを開始していない状態。
	LoadStatusIdle LoadStatus = "idle"
	// LoadStatusLoading はリクエスト送信中の状態。
	LoadStatusLoading LoadStatus = "loading"
	// LoadStatusSuccess は直近の読み込みが成功した状態。
	LoadStatusSuccess LoadStatus = "success"
	// LoadStatusError は直近の読み込みが失敗した状態。
	LoadStatusError LoadStatus = "error"
)

// String はLoadStatusの文字列表現を返す。
func (s LoadStatus) String() string {
	return string(s)
}

// IsLoading は読み込み中かどうかを返す。
func (s LoadStatus) IsLoading() bool {
	return s == LoadStatusLoading
}
