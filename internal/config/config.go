// Package config はアプリケーション全体の環境設定を環境変数から読み込みます。
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/shouni/go-utils/envutil"

	"github.com/shouni/gemini-character-kit/pkg/assistant"
	"github.com/shouni/gemini-character-kit/pkg/generator"
	"github.com/shouni/gemini-character-kit/pkg/prompts"
)

// デフォルト値の定義なのだ
const (
	DefaultListenAddr   = ":8080"
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultRateInterval = 10 * time.Second
)

// Config はアプリケーション全体の環境設定（APIキーやモデル名）を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey   string
	ImageModel     string
	AssistantModel string
	WatermarkText  string
	ListenAddr     string
	HTTPTimeout    time.Duration
	RateInterval   time.Duration
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
// .env ファイルがあれば先に読み込みます（無くてもエラーにはしません）。
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		GeminiAPIKey:   envutil.GetEnv("GEMINI_API_KEY", ""),
		ImageModel:     envutil.GetEnv("IMAGE_GEMINI_MODEL", generator.DefaultImageModel),
		AssistantModel: envutil.GetEnv("GEMINI_MODEL", assistant.DefaultAssistantModel),
		WatermarkText:  envutil.GetEnv("WATERMARK_TEXT", prompts.DefaultWatermarkText),
		ListenAddr:     envutil.GetEnv("LISTEN_ADDR", DefaultListenAddr),
		HTTPTimeout:    durationEnv("HTTP_TIMEOUT", DefaultHTTPTimeout),
		RateInterval:   durationEnv("RATE_INTERVAL", DefaultRateInterval),
	}
}

// durationEnv は環境変数を time.Duration として解釈します。
// 未設定・解釈不能の場合はフォールバック値を返します。
func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
