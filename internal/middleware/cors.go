package middleware

import "net/http"

// セッションAPIが受け付けるメソッド（/api/sessions 配下のルートと一致させる）
const sessionAPIMethods = "GET, POST, PUT, DELETE, OPTIONS"

// NewCORSMiddleware は指定されたオリジンに対するCORSミドルウェアを返す。
// セッションIDはパスで受け渡し、Cookieを使わないため、credentialsは許可しない。
// レート制限時のRetry-Afterはブラウザのクライアントからも読めるよう公開する。
func NewCORSMiddleware(allowedOrigin string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowedOrigin)
			h.Set("Access-Control-Expose-Headers", "Retry-After")
			h.Add("Vary", "Origin")

			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			// プリフライトにはセッションAPIの許可内容だけを返す
			h.Set("Access-Control-Allow-Methods", sessionAPIMethods)
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
