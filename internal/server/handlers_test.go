package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/gemini-character-kit/pkg/assistant"
	"github.com/shouni/gemini-character-kit/pkg/domain"
	"github.com/shouni/gemini-character-kit/pkg/generator"
	"github.com/shouni/gemini-character-kit/pkg/prompts"
	"github.com/shouni/gemini-character-kit/pkg/session"
)

// --- Mocks ---

type mockImageGenerator struct {
	generateFunc func(ctx context.Context, req generator.Request) (*generator.Result, error)
}

func (m *mockImageGenerator) Generate(ctx context.Context, req generator.Request) (*generator.Result, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, req)
	}
	return &generator.Result{Data: []byte("fake-image"), MIMEType: "image/png"}, nil
}

type mockSuggester struct {
	suggestFunc func(ctx context.Context, req assistant.Request) (*assistant.Reply, error)
}

func (m *mockSuggester) Suggest(ctx context.Context, req assistant.Request) (*assistant.Reply, error) {
	if m.suggestFunc != nil {
		return m.suggestFunc(ctx, req)
	}
	return &assistant.Reply{Explanation: "ok"}, nil
}

type mockHTTPClient struct {
	fetchFunc func(ctx context.Context, url string) ([]byte, error)
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	return m.fetchFunc(ctx, url)
}

func (m *mockHTTPClient) DoRequest(req *http.Request) ([]byte, error) { return nil, nil }

func (m *mockHTTPClient) FetchAndDecodeJSON(ctx context.Context, url string, v any) error {
	return nil
}

func (m *mockHTTPClient) PostJSONAndFetchBytes(ctx context.Context, url string, data any) ([]byte, error) {
	return nil, nil
}

func (m *mockHTTPClient) PostRawBodyAndFetchBytes(ctx context.Context, url string, body []byte, contentType string) ([]byte, error) {
	return nil, nil
}

// --- Helpers ---

func newTestServer(t *testing.T, gen *mockImageGenerator, sug *mockSuggester) *Server {
	t.Helper()
	if gen == nil {
		gen = &mockImageGenerator{}
	}
	if sug == nil {
		sug = &mockSuggester{}
	}
	sess, err := session.New(gen, sug, prompts.NewComposer(""))
	require.NoError(t, err)

	httpClient := &mockHTTPClient{
		fetchFunc: func(ctx context.Context, url string) ([]byte, error) {
			return encodePNG(t), nil
		},
	}
	loader, err := session.NewReferenceLoader(httpClient, cache.New(time.Minute, time.Minute), time.Minute)
	require.NoError(t, err)

	srv, err := New(sess, loader)
	require.NoError(t, err)
	return srv
}

func encodePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{uint8(x * 30), uint8(y * 30), 128, 255})
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// --- Tests ---

func TestServer_StateAndProfile(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	t.Run("プロフィール更新が状態に反映されるのだ", func(t *testing.T) {
		profile := domain.CharacterProfile{CharacterName: "Nova", Outfit: "school uniform"}
		rec := doJSON(t, srv, "PUT", "/api/profile", profile)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, srv, "GET", "/api/state", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		state := decodeBody[stateResponse](t, rec)
		assert.Equal(t, "Nova", state.Profile.CharacterName)
		assert.Equal(t, domain.PhaseIdle, state.Result.Phase)
	})

	t.Run("壊れたボディは 400 を返す", func(t *testing.T) {
		req := httptest.NewRequest("PUT", "/api/profile", strings.NewReader("{broken"))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_PromptPreview(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	doJSON(t, srv, "PUT", "/api/profile", domain.CharacterProfile{Outfit: "hoodie", OutfitColor: "mint green"})

	rec := doJSON(t, srv, "GET", "/api/prompt", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[promptResponse](t, rec)
	assert.Contains(t, resp.Prompt, "hoodie")
	assert.Contains(t, resp.Prompt, "mint green")
	assert.Contains(t, resp.Prompt, "PRIMARY DIRECTIVE")
}

func TestServer_Catalog(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rec := doJSON(t, srv, "GET", "/api/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[catalogResponse](t, rec)
	assert.NotEmpty(t, resp.Options["proportion"])
	assert.NotEmpty(t, resp.Options["background"])
}

func TestServer_ReferenceUpload(t *testing.T) {
	t.Run("multipart で顔参照を登録できるのだ", func(t *testing.T) {
		srv := newTestServer(t, nil, nil)

		body := new(bytes.Buffer)
		mw := multipart.NewWriter(body)
		part, err := mw.CreateFormFile("image", "face.png")
		require.NoError(t, err)
		_, err = part.Write(encodePNG(t))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest("POST", "/api/references/face", body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		state := decodeBody[stateResponse](t, doJSON(t, srv, "GET", "/api/state", nil))
		assert.True(t, state.HasFaceRef)
		assert.False(t, state.HasStyleRef)
	})

	t.Run("画像以外のアップロードは 400", func(t *testing.T) {
		srv := newTestServer(t, nil, nil)

		body := new(bytes.Buffer)
		mw := multipart.NewWriter(body)
		part, _ := mw.CreateFormFile("image", "note.txt")
		_, _ = part.Write([]byte("just text, definitely not an image"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest("POST", "/api/references/style", body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("URL から参照を取り込めるのだ", func(t *testing.T) {
		srv := newTestServer(t, nil, nil)

		rec := doJSON(t, srv, "POST", "/api/references/style/url",
			referenceURLRequest{URL: "http://203.0.113.10/style.png"})
		require.Equal(t, http.StatusOK, rec.Code)

		state := decodeBody[stateResponse](t, doJSON(t, srv, "GET", "/api/state", nil))
		assert.True(t, state.HasStyleRef)
	})

	t.Run("未知のスロットは 404", func(t *testing.T) {
		srv := newTestServer(t, nil, nil)

		rec := doJSON(t, srv, "POST", "/api/references/body/url",
			referenceURLRequest{URL: "http://203.0.113.10/x.png"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("削除すると参照が外れる", func(t *testing.T) {
		srv := newTestServer(t, nil, nil)
		doJSON(t, srv, "POST", "/api/references/face/url",
			referenceURLRequest{URL: "http://203.0.113.10/face.png"})

		rec := doJSON(t, srv, "DELETE", "/api/references/face", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		state := decodeBody[stateResponse](t, doJSON(t, srv, "GET", "/api/state", nil))
		assert.False(t, state.HasFaceRef)
	})
}

func TestServer_Generate(t *testing.T) {
	t.Run("成功すると Success スロットが返るのだ", func(t *testing.T) {
		srv := newTestServer(t, nil, nil)

		rec := doJSON(t, srv, "POST", "/api/generate", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		result := decodeBody[domain.GenerationResult](t, rec)
		assert.Equal(t, domain.PhaseSuccess, result.Phase)
		assert.Equal(t, []byte("fake-image"), result.Image)
	})

	t.Run("進行中の2回目は 409 Conflict", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		gen := &mockImageGenerator{
			generateFunc: func(ctx context.Context, req generator.Request) (*generator.Result, error) {
				close(started)
				<-release
				return &generator.Result{Data: []byte("slow"), MIMEType: "image/png"}, nil
			},
		}
		srv := newTestServer(t, gen, nil)

		go func() {
			doJSON(t, srv, "POST", "/api/generate", nil)
		}()
		<-started

		rec := doJSON(t, srv, "POST", "/api/generate", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		close(release)
	})

	t.Run("API 失敗は 200 の Failure スロットとして返る", func(t *testing.T) {
		gen := &mockImageGenerator{
			generateFunc: func(ctx context.Context, req generator.Request) (*generator.Result, error) {
				return nil, assertableQuotaError{}
			},
		}
		srv := newTestServer(t, gen, nil)

		rec := doJSON(t, srv, "POST", "/api/generate", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		result := decodeBody[domain.GenerationResult](t, rec)
		assert.Equal(t, domain.PhaseFailure, result.Phase)
		assert.Contains(t, result.Message, "利用上限")
	})
}

type assertableQuotaError struct{}

func (assertableQuotaError) Error() string { return "429 RESOURCE_EXHAUSTED" }

func TestServer_Chat(t *testing.T) {
	strPtr := func(v string) *string { return &v }

	t.Run("メッセージ送信で応答ターンが返り、ログが伸びるのだ", func(t *testing.T) {
		sug := &mockSuggester{
			suggestFunc: func(ctx context.Context, req assistant.Request) (*assistant.Reply, error) {
				return &assistant.Reply{
					Explanation: "try clay",
					Suggestion:  domain.Suggestion{Material: strPtr("clay style")},
				}, nil
			},
		}
		srv := newTestServer(t, nil, sug)

		rec := doJSON(t, srv, "POST", "/api/chat", chatRequest{Text: "cute mascot"})
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[chatResponse](t, rec)
		assert.Equal(t, "try clay", resp.Turn.Text)
		require.NotNil(t, resp.Turn.Suggestion)

		conv := decodeBody[conversationResponse](t, doJSON(t, srv, "GET", "/api/chat", nil))
		assert.Len(t, conv.Turns, 3)
	})

	t.Run("空メッセージは 400", func(t *testing.T) {
		srv := newTestServer(t, nil, nil)
		rec := doJSON(t, srv, "POST", "/api/chat", chatRequest{Text: "   "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("提案の適用でプロフィールとシーンが同時に変わる", func(t *testing.T) {
		sug := &mockSuggester{
			suggestFunc: func(ctx context.Context, req assistant.Request) (*assistant.Reply, error) {
				return &assistant.Reply{
					Explanation: "full recipe",
					Suggestion: domain.Suggestion{
						Material: strPtr("felt wool style"),
						Pose:     strPtr("waving hello"),
					},
				}, nil
			},
		}
		srv := newTestServer(t, nil, sug)

		resp := decodeBody[chatResponse](t, doJSON(t, srv, "POST", "/api/chat", chatRequest{Text: "soft look"}))

		rec := doJSON(t, srv, "POST", "/api/chat/"+resp.Turn.ID+"/apply", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		state := decodeBody[stateResponse](t, rec)
		assert.Equal(t, "felt wool style", state.Profile.Material)
		assert.Equal(t, "waving hello", state.Scene.Pose)
	})

	t.Run("存在しないターンへの適用は 404", func(t *testing.T) {
		srv := newTestServer(t, nil, nil)
		rec := doJSON(t, srv, "POST", "/api/chat/nope/apply", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
