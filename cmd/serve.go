package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-http-kit/httpkit"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/shouni/gemini-character-kit/internal/server"
	"github.com/shouni/gemini-character-kit/pkg/assistant"
	"github.com/shouni/gemini-character-kit/pkg/generator"
	"github.com/shouni/gemini-character-kit/pkg/prompts"
	"github.com/shouni/gemini-character-kit/pkg/session"
)

// 参照画像キャッシュの保持設定なのだ
const (
	cacheExpiration      = 30 * time.Minute
	cacheCleanupInterval = 1 * time.Hour
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "制作セッションを公開する HTTP サーバーを起動するのだ。",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		srv, err := buildServer(ctx)
		if err != nil {
			return err
		}

		slog.Info("サーバーを起動します", "addr", cfg.ListenAddr)
		httpServer := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           srv.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("サーバーの起動に失敗しました: %w", err)
		}
		return nil
	},
}

// buildServer は設定から依存関係を組み立てて HTTP サーバーを初期化します。
func buildServer(ctx context.Context) (*server.Server, error) {
	limiter := rate.NewLimiter(rate.Every(cfg.RateInterval), 1)

	gen, err := generator.New(ctx, cfg.GeminiAPIKey, cfg.ImageModel, limiter)
	if err != nil {
		return nil, fmt.Errorf("画像生成クライアントの初期化に失敗しました: %w", err)
	}
	suggester, err := assistant.New(ctx, cfg.GeminiAPIKey, cfg.AssistantModel)
	if err != nil {
		return nil, fmt.Errorf("アシスタントクライアントの初期化に失敗しました: %w", err)
	}

	sess, err := session.New(gen, suggester, prompts.NewComposer(cfg.WatermarkText))
	if err != nil {
		return nil, err
	}

	httpClient := httpkit.New(cfg.HTTPTimeout)
	imgCache := cache.New(cacheExpiration, cacheCleanupInterval)
	loader, err := session.NewReferenceLoader(httpClient, imgCache, cacheExpiration)
	if err != nil {
		return nil, err
	}

	return server.New(sess, loader)
}
