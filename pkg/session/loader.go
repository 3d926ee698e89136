package session

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-http-kit/httpkit"
	"golang.org/x/sync/singleflight"

	"github.com/shouni/gemini-character-kit/pkg/domain"
	"github.com/shouni/gemini-character-kit/pkg/imgutil"
)

// DefaultReferenceTTL は取得済み参照画像のキャッシュ保持時間です。
const DefaultReferenceTTL = 30 * time.Minute

// ReferenceLoader は URL から参照画像を取得してスロットに収められる形へ
// 整えるコンポーネントです。同じ URL への同時取得は1回に集約されます。
type ReferenceLoader struct {
	httpClient httpkit.Requester
	imageCache *cache.Cache
	fetchGroup singleflight.Group
	ttl        time.Duration
}

// NewReferenceLoader は依存関係を注入して ReferenceLoader を生成します。
func NewReferenceLoader(httpClient httpkit.Requester, imageCache *cache.Cache, ttl time.Duration) (*ReferenceLoader, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	if imageCache == nil {
		return nil, fmt.Errorf("imageCache is required")
	}
	if ttl <= 0 {
		ttl = DefaultReferenceTTL
	}
	return &ReferenceLoader{
		httpClient: httpClient,
		imageCache: imageCache,
		ttl:        ttl,
	}, nil
}

// Load は URL から参照画像を取得します。画像以外のコンテンツは拒否し、
// インライン送信の上限を超える場合は再エンコードして収めます。
func (l *ReferenceLoader) Load(ctx context.Context, rawURL string) (*domain.ReferenceImage, error) {
	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return nil, fmt.Errorf("URLパース失敗: %w", err)
	}

	// SSRF対策のバリデーション
	if safe, err := isSafeURL(parsedURL); !safe || err != nil {
		slog.WarnContext(ctx, "SSRFの可能性がある、または不正なURLをブロックしました",
			"url", rawURL, "error", err)
		return nil, fmt.Errorf("この URL からは参照画像を取得できません")
	}

	data, err := l.fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("参照画像のダウンロードに失敗しました: %w", err)
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("取得したコンテンツが画像ではありません (MIME: %s)", mimeType)
	}

	data, mimeType, err = imgutil.FitForUpload(data, mimeType, imgutil.DefaultMaxInlineBytes, imgutil.DefaultQuality)
	if err != nil {
		return nil, err
	}

	name := path.Base(parsedURL.Path)
	if name == "" || name == "/" || name == "." {
		name = parsedURL.Hostname()
	}
	return domain.NewReferenceImage(name, mimeType, data, nil), nil
}

// fetch はキャッシュを優先し、未取得の URL だけを singleflight 経由で
// ダウンロードします。
func (l *ReferenceLoader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if cached, found := l.imageCache.Get(rawURL); found {
		if data, ok := cached.([]byte); ok {
			return data, nil
		}
		slog.WarnContext(ctx, "キャッシュデータが不正な型です", "url", rawURL, "type", fmt.Sprintf("%T", cached))
	}

	val, err, _ := l.fetchGroup.Do(rawURL, func() (interface{}, error) {
		data, err := l.httpClient.FetchBytes(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		l.imageCache.Set(rawURL, data, l.ttl)
		return data, nil
	})
	if err != nil {
		return nil, err
	}

	data, ok := val.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected return type from singleflight: %T", val)
	}
	return data, nil
}

// isSafeURL は SSRF 対策として URL を検証します。
// 名前解決されたすべての IP アドレスに対してプライベート IP チェックを行います。
func isSafeURL(parsedURL *url.URL) (bool, error) {
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return false, fmt.Errorf("不許可スキーム: %s", parsedURL.Scheme)
	}

	host := parsedURL.Hostname()
	var ips []net.IP

	// 1. IPアドレスが直接指定されているか確認
	if ip := net.ParseIP(host); ip != nil {
		ips = []net.IP{ip}
	} else {
		// 2. ホスト名の場合、すべての IP を取得する
		resolvedIPs, err := net.LookupIP(host)
		if err != nil {
			return false, fmt.Errorf("名前解決失敗: %w", err)
		}
		ips = resolvedIPs
	}

	if len(ips) == 0 {
		return false, fmt.Errorf("IPが見つかりません")
	}

	// すべての解決された IP を検証する
	for _, ip := range ips {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
			return false, fmt.Errorf("制限されたネットワークへのアクセスを検知: %s", ip.String())
		}
	}

	return true, nil
}
