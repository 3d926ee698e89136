package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/shouni/gemini-character-kit/pkg/catalog"
	"github.com/shouni/gemini-character-kit/pkg/domain"
	"github.com/shouni/gemini-character-kit/pkg/imgutil"
	"github.com/shouni/gemini-character-kit/pkg/session"
)

// maxUploadBytes はアップロードフォーム全体の上限です。
const maxUploadBytes = 16 << 20

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stateResponse{
		Profile:     s.session.Profile(),
		Scene:       s.session.Scene(),
		Options:     s.session.Options(),
		HasFaceRef:  s.session.HasFaceReference(),
		HasStyleRef: s.session.HasStyleReference(),
		Result:      s.session.Result(),
	})
}

func (s *Server) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	opts := make(map[string][]string)
	for _, field := range catalog.Fields() {
		opts[string(field)] = catalog.Options(field)
	}
	writeJSON(w, http.StatusOK, catalogResponse{Options: opts})
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var profile domain.CharacterProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "プロフィールの JSON を解析できません")
		return
	}
	s.session.SetProfile(profile)
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handlePutScene(w http.ResponseWriter, r *http.Request) {
	var scene domain.ScenePlan
	if err := json.NewDecoder(r.Body).Decode(&scene); err != nil {
		writeError(w, http.StatusBadRequest, "シーンの JSON を解析できません")
		return
	}
	s.session.SetScene(scene)
	writeJSON(w, http.StatusOK, scene)
}

func (s *Server) handlePutOptions(w http.ResponseWriter, r *http.Request) {
	var opts domain.GenerationOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeError(w, http.StatusBadRequest, "オプションの JSON を解析できません")
		return
	}
	s.session.SetOptions(opts)
	writeJSON(w, http.StatusOK, opts)
}

func (s *Server) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, promptResponse{Prompt: s.session.PromptPreview()})
}

// handleUploadReference は multipart フォームの "image" フィールドから
// 参照画像を受け取ります。slot は face か style です。
func (s *Server) handleUploadReference(w http.ResponseWriter, r *http.Request) {
	slot := mux.Vars(r)["slot"]
	if slot != "face" && slot != "style" {
		writeError(w, http.StatusNotFound, fmt.Sprintf("未知の参照スロット: %s", slot))
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "アップロードフォームを解析できません")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image フィールドがありません")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "アップロードデータを読み取れません")
		return
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("画像ではありません (MIME: %s)", mimeType))
		return
	}

	data, mimeType, err = imgutil.FitForUpload(data, mimeType, imgutil.DefaultMaxInlineBytes, imgutil.DefaultQuality)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	img := domain.NewReferenceImage(header.Filename, mimeType, data, nil)
	s.setReference(slot, img)

	slog.Info("参照画像を受け付けました", "slot", slot, "name", header.Filename, "bytes", len(data))
	writeJSON(w, http.StatusOK, map[string]string{"slot": slot, "name": img.Name, "mime_type": img.MIMEType})
}

// handleLoadReferenceURL は URL から参照画像を取り込みます。
func (s *Server) handleLoadReferenceURL(w http.ResponseWriter, r *http.Request) {
	slot := mux.Vars(r)["slot"]
	if slot != "face" && slot != "style" {
		writeError(w, http.StatusNotFound, fmt.Sprintf("未知の参照スロット: %s", slot))
		return
	}

	var req referenceURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "url フィールドが必要です")
		return
	}

	img, err := s.loader.Load(r.Context(), req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.setReference(slot, img)

	writeJSON(w, http.StatusOK, map[string]string{"slot": slot, "name": img.Name, "mime_type": img.MIMEType})
}

func (s *Server) handleDeleteReference(w http.ResponseWriter, r *http.Request) {
	slot := mux.Vars(r)["slot"]
	switch slot {
	case "face":
		s.session.ClearFaceReference()
	case "style":
		s.session.ClearStyleReference()
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("未知の参照スロット: %s", slot))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"slot": slot})
}

func (s *Server) setReference(slot string, img *domain.ReferenceImage) {
	if slot == "face" {
		s.session.SetFaceReference(img)
		return
	}
	s.session.SetStyleReference(img)
}

// handleGenerate は生成を実行します。進行中なら 409 を返します。
// 生成の失敗は 200 の失敗スロットとして返ります。
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	result, err := s.session.Generate(r.Context())
	if err != nil {
		if errors.Is(err, session.ErrBusy) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Result())
}

// handlePostChat はメッセージをアシスタントに送ります。multipart の場合は
// text フィールドと任意の image 添付、それ以外は JSON ボディです。
func (s *Server) handlePostChat(w http.ResponseWriter, r *http.Request) {
	text, chatImage, err := s.parseChatRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(text) == "" {
		chatImage.Release()
		writeError(w, http.StatusBadRequest, "text フィールドが必要です")
		return
	}

	turn, err := s.session.SendMessage(r.Context(), text, chatImage)
	if err != nil {
		if errors.Is(err, session.ErrBusy) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Turn: turn})
}

func (s *Server) parseChatRequest(r *http.Request) (string, *domain.ReferenceImage, error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", nil, fmt.Errorf("メッセージの JSON を解析できません")
		}
		return req.Text, nil, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", nil, fmt.Errorf("アップロードフォームを解析できません")
	}
	text := r.FormValue("text")

	file, header, err := r.FormFile("image")
	if err != nil {
		// 添付なしのフォームも許容する
		return text, nil, nil
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("添付画像を読み取れません")
	}
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", nil, fmt.Errorf("添付が画像ではありません (MIME: %s)", mimeType)
	}
	data, mimeType, err = imgutil.FitForUpload(data, mimeType, imgutil.DefaultMaxInlineBytes, imgutil.DefaultQuality)
	if err != nil {
		return "", nil, err
	}
	return text, domain.NewReferenceImage(header.Filename, mimeType, data, nil), nil
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, conversationResponse{Turns: s.session.Conversation()})
}

// handleApplySuggestion は指定ターンの提案をプロフィールとシーンへ適用します。
func (s *Server) handleApplySuggestion(w http.ResponseWriter, r *http.Request) {
	turnID := mux.Vars(r)["turnID"]
	if err := s.session.ApplySuggestion(turnID); err != nil {
		if errors.Is(err, session.ErrSuggestionNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{
		Profile:     s.session.Profile(),
		Scene:       s.session.Scene(),
		Options:     s.session.Options(),
		HasFaceRef:  s.session.HasFaceReference(),
		HasStyleRef: s.session.HasStyleReference(),
		Result:      s.session.Result(),
	})
}
