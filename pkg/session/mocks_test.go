package session

import (
	"context"
	"net/http"

	"github.com/shouni/gemini-character-kit/pkg/assistant"
	"github.com/shouni/gemini-character-kit/pkg/generator"
)

// --- Mocks ---

type mockImageGenerator struct {
	called       int
	lastRequest  generator.Request
	generateFunc func(ctx context.Context, req generator.Request) (*generator.Result, error)
}

func (m *mockImageGenerator) Generate(ctx context.Context, req generator.Request) (*generator.Result, error) {
	m.called++
	m.lastRequest = req
	if m.generateFunc != nil {
		return m.generateFunc(ctx, req)
	}
	return &generator.Result{Data: []byte("fake-image"), MIMEType: "image/png"}, nil
}

type mockSuggester struct {
	called      int
	lastRequest assistant.Request
	suggestFunc func(ctx context.Context, req assistant.Request) (*assistant.Reply, error)
}

func (m *mockSuggester) Suggest(ctx context.Context, req assistant.Request) (*assistant.Reply, error) {
	m.called++
	m.lastRequest = req
	if m.suggestFunc != nil {
		return m.suggestFunc(ctx, req)
	}
	return &assistant.Reply{Explanation: "ok"}, nil
}

// mockHTTPClient は httpkit.Requester を実装します。
type mockHTTPClient struct {
	called    int
	fetchFunc func(ctx context.Context, url string) ([]byte, error)
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.called++
	return m.fetchFunc(ctx, url)
}

// インターフェースを満たすための空実装群なのだ
func (m *mockHTTPClient) DoRequest(req *http.Request) ([]byte, error) {
	return nil, nil
}

func (m *mockHTTPClient) FetchAndDecodeJSON(ctx context.Context, url string, v any) error {
	return nil
}

func (m *mockHTTPClient) PostJSONAndFetchBytes(ctx context.Context, url string, data any) ([]byte, error) {
	return nil, nil
}

func (m *mockHTTPClient) PostRawBodyAndFetchBytes(ctx context.Context, url string, body []byte, contentType string) ([]byte, error) {
	return nil, nil
}
