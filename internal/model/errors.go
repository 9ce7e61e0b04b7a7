// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: catalog, session, validation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeListFetchFailed   = "LIST_FETCH_FAILED"
	ErrCodeDetailFetchFailed = "DETAIL_FETCH_FAILED"
	ErrCodeSessionNotFound   = "SESSION_NOT_FOUND"
	ErrCodeSessionLimit      = "SESSION_LIMIT"
	ErrCodeItemNotFound      = "ITEM_NOT_FOUND"
	ErrCodeInvalidLanguage   = "INVALID_LANGUAGE"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeListBusy          = "LIST_BUSY"
)

// NewListFetchFailedError は一覧取得失敗エラーを生成する。
// メッセージは固定文言で、原因はログにのみ記録する。
func NewListFetchFailedError(lang Language) *APIError {
	if lang == LanguageEnglish {
		return &APIError{
			Code:     ErrCodeListFetchFailed,
			Message:  "Could not retrieve food items. Please try again later.",
			Category: "catalog",
			Action:   "Change page or search to try again.",
		}
	}
	return &APIError{
		Code:     ErrCodeListFetchFailed,
		Message:  "Kunde inte hämta livsmedel. Vänligen försök igen senare.",
		Category: "catalog",
		Action:   "Byt sida eller sök igen för att försöka på nytt.",
	}
}

// NewDetailFetchFailedError は詳細取得失敗エラーを生成する。
// メッセージには対象食品の表示名を含める。
func NewDetailFetchFailedError(lang Language, displayName string) *APIError {
	if lang == LanguageEnglish {
		return &APIError{
			Code:     ErrCodeDetailFetchFailed,
			Message:  fmt.Sprintf("Could not retrieve details for %s.", displayName),
			Category: "catalog",
			Action:   "Select the item again to retry.",
		}
	}
	return &APIError{
		Code:     ErrCodeDetailFetchFailed,
		Message:  fmt.Sprintf("Kunde inte hämta detaljer för %s.", displayName),
		Category: "catalog",
		Action:   "Välj livsmedlet igen för att försöka på nytt.",
	}
}

// NewSessionNotFoundError はセッション未検出エラーを生成する。
func NewSessionNotFoundError(sessionID string) *APIError {
	return &APIError{
		Code:     ErrCodeSessionNotFound,
		Message:  fmt.Sprintf("指定されたセッションが見つかりません: %s", sessionID),
		Category: "session",
		Action:   "新しいセッションを作成してください。",
	}
}

// NewSessionLimitError はセッション数上限エラーを生成する。
func NewSessionLimitError(limit int) *APIError {
	return &APIError{
		Code:     ErrCodeSessionLimit,
		Message:  fmt.Sprintf("同時セッション数が上限（%d件）に達しています。", limit),
		Category: "session",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewItemNotFoundError は現在のページに存在しない食品が選択された場合のエラーを生成する。
func NewItemNotFoundError(nummer int) *APIError {
	return &APIError{
		Code:     ErrCodeItemNotFound,
		Message:  fmt.Sprintf("現在のページに食品が見つかりません: %d", nummer),
		Category: "validation",
		Action:   "表示中のページから食品を選択してください。",
	}
}

// NewInvalidLanguageError は無効な言語指定エラーを生成する。
func NewInvalidLanguageError(lang int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidLanguage,
		Message:  fmt.Sprintf("無効な言語です: %d", lang),
		Category: "validation",
		Action:   "言語には 1（svenska）または 2（english）を指定してください。",
	}
}

// NewInvalidRequestError はリクエストボディが不正な場合のエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "リクエストの形式を確認してください。",
	}
}

// NewListBusyError は一覧の読み込み中に次ページが要求された場合のエラーを生成する。
func NewListBusyError() *APIError {
	return &APIError{
		Code:     ErrCodeListBusy,
		Message:  "一覧を読み込み中です。",
		Category: "session",
		Action:   "読み込みの完了を待ってから再度お試しください。",
	}
}
