// Package server は、制作セッションをブラウザに公開する HTTP 層です。
// 状態の保持と排他はすべて pkg/session 側にあり、ここでは JSON の出入りと
// ステータスコードへの写像だけを行います。
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shouni/gemini-character-kit/pkg/session"
)

var (
	errNilSession = errors.New("sess (Session) is required")
	errNilLoader  = errors.New("loader (ReferenceLoader) is required")
)

// Server は1セッションを公開する HTTP ハンドラー群です。
type Server struct {
	session *session.Session
	loader  *session.ReferenceLoader
}

// New は Server を生成します。loader は URL からの参照取り込みに使います。
func New(sess *session.Session, loader *session.ReferenceLoader) (*Server, error) {
	if sess == nil {
		return nil, errNilSession
	}
	if loader == nil {
		return nil, errNilLoader
	}
	return &Server{session: sess, loader: loader}, nil
}

// Router は全エンドポイントを登録したルーターを返します。
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", s.handleGetState).Methods("GET")
	api.HandleFunc("/catalog", s.handleGetCatalog).Methods("GET")
	api.HandleFunc("/profile", s.handlePutProfile).Methods("PUT")
	api.HandleFunc("/scene", s.handlePutScene).Methods("PUT")
	api.HandleFunc("/options", s.handlePutOptions).Methods("PUT")
	api.HandleFunc("/prompt", s.handleGetPrompt).Methods("GET")
	api.HandleFunc("/references/{slot}", s.handleUploadReference).Methods("POST")
	api.HandleFunc("/references/{slot}/url", s.handleLoadReferenceURL).Methods("POST")
	api.HandleFunc("/references/{slot}", s.handleDeleteReference).Methods("DELETE")
	api.HandleFunc("/generate", s.handleGenerate).Methods("POST")
	api.HandleFunc("/result", s.handleGetResult).Methods("GET")
	api.HandleFunc("/chat", s.handlePostChat).Methods("POST")
	api.HandleFunc("/chat", s.handleGetChat).Methods("GET")
	api.HandleFunc("/chat/{turnID}/apply", s.handleApplySuggestion).Methods("POST")
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON は共通の JSON 応答ヘルパーです。
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("レスポンスのエンコードに失敗しました", "error", err)
	}
}

// writeError はエラー封筒を書き込みます。
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
