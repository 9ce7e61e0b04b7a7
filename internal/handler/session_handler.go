package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/livsmedel/internal/browse"
	"github.com/hitoshi/livsmedel/internal/model"
)

// SessionRegistry はセッションハンドラーが必要とするセッション管理インターフェース。
// *browse.Registry が満たす。
type SessionRegistry interface {
	Create(lang model.Language) (*browse.Session, error)
	Get(id string) (*browse.Session, error)
	Delete(id string) error
}

// SessionHandler は閲覧セッションのHTTPハンドラー。
// 1クライアントにつき1セッションを割り当て、操作のたびに現在のビューを返す。
type SessionHandler struct {
	sessions SessionRegistry
}

// NewSessionHandler はSessionHandlerを生成する。
func NewSessionHandler(sessions SessionRegistry) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// createSessionRequest はセッション作成リクエストのボディ。ボディは省略できる。
type createSessionRequest struct {
	Language int `json:"language"`
}

// searchRequest は検索入力リクエストのボディ。
type searchRequest struct {
	Text      string `json:"text"`
	Immediate bool   `json:"immediate"`
}

// languageRequest は言語切り替えリクエストのボディ。
type languageRequest struct {
	Language int `json:"language"`
}

// selectRequest は食品選択リクエストのボディ。
type selectRequest struct {
	Nummer int `json:"nummer"`
}

// CreateSession は新しい閲覧セッションを作成する。
// POST /api/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("JSONの解析に失敗しました"))
		return
	}

	lang := model.Language(req.Language)
	if req.Language != 0 && !lang.Valid() {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidLanguageError(req.Language))
		return
	}

	s, err := h.sessions.Create(lang)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if wantsWait(r) {
		s.Wait()
	}
	writeJSON(w, http.StatusCreated, s.View())
}

// GetSession は現在のビューを返す。
// GET /api/sessions/:id
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if wantsWait(r) {
		s.Wait()
	}
	writeJSON(w, http.StatusOK, s.View())
}

// DeleteSession はセッションを破棄する。
// DELETE /api/sessions/:id
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search は検索入力を受け付ける。
// 通常はデバウンスされ、immediateの場合は保留中の入力を即座に確定する。
// PUT /api/sessions/:id/search
func (h *SessionHandler) Search(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("JSONの解析に失敗しました"))
		return
	}

	s.InputSearch(req.Text)
	if req.Immediate {
		s.FlushSearch()
	}

	if wantsWait(r) {
		s.Wait()
	}
	writeJSON(w, http.StatusAccepted, s.View())
}

// NextPage は次のページへ進む。一覧の読み込み中は409を返す。
// POST /api/sessions/:id/next
func (h *SessionHandler) NextPage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if !s.NextPage() {
		writeAPIErrorResponse(w, http.StatusConflict, model.NewListBusyError())
		return
	}

	if wantsWait(r) {
		s.Wait()
	}
	writeJSON(w, http.StatusOK, s.View())
}

// PrevPage は前のページへ戻る。先頭ページでは何もせず現在のビューを返す。
// POST /api/sessions/:id/prev
func (h *SessionHandler) PrevPage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	s.PrevPage()

	if wantsWait(r) {
		s.Wait()
	}
	writeJSON(w, http.StatusOK, s.View())
}

// SetLanguage は表示言語を切り替える。
// PUT /api/sessions/:id/language
func (h *SessionHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req languageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("JSONの解析に失敗しました"))
		return
	}

	if err := s.SetLanguage(model.Language(req.Language)); err != nil {
		handleServiceError(w, err)
		return
	}

	if wantsWait(r) {
		s.Wait()
	}
	writeJSON(w, http.StatusOK, s.View())
}

// Select は表示中のページから食品を選択し、詳細の読み込みを開始する。
// POST /api/sessions/:id/select
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("JSONの解析に失敗しました"))
		return
	}

	if err := s.SelectByNummer(req.Nummer); err != nil {
		handleServiceError(w, err)
		return
	}

	if wantsWait(r) {
		s.Wait()
	}
	writeJSON(w, http.StatusOK, s.View())
}

// lookup はURLパラメータのIDでセッションを取得する。見つからない場合はエラーレスポンスを書き込む。
func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*browse.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return nil, false
	}
	return s, true
}

// wantsWait はクエリパラメータ wait=true が指定されているかを返す。
func wantsWait(r *http.Request) bool {
	wait, err := strconv.ParseBool(r.URL.Query().Get("wait"))
	return err == nil && wait
}

// decodeOptionalBody はボディが空の場合はエラーにせずそのまま返す。
func decodeOptionalBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
