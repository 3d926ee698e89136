// Package cmd は CLI のエントリポイントです。サーバー起動（serve）と
// 1回きりの生成（render）の2つのサブコマンドを提供します。
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/shouni/gemini-character-kit/internal/config"
	"github.com/shouni/gemini-character-kit/pkg/generator"
)

// cfg はコマンド実行前に読み込まれた環境設定なのだ。
var cfg *config.Config

// apiKeyFlag は --api-key で指定された呼び出し側キーなのだ。
// 環境変数 GEMINI_API_KEY より優先されるのだよ。
var apiKeyFlag string

var rootCmd = &cobra.Command{
	Use:   "gemini-character-kit",
	Short: "ブランドキャラクターのポートレートを Gemini で生成するキットなのだ。",
	Long: "キャラクターの視覚レシピ（ブループリント）を固定したまま、ポーズ・アングル・背景だけを" +
		"差し替えて一貫性のあるポートレートを生成するためのツールなのだ。",
	PersistentPreRunE: preRunAppE,
	SilenceUsage:      true,
}

// preRunAppE は、コマンド実行前に環境変数などの必須チェックを行うのだ。
// Gemini APIを利用するため、APIキーの解決はここで済ませてしまうのだよ。
// キーが見つからなければネットワークに触れる前にエラーで止まるのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	cfg = config.LoadConfig()

	key, err := generator.ResolveCredential(apiKeyFlag, cfg.GeminiAPIKey)
	if err != nil {
		return err
	}
	cfg.GeminiAPIKey = key
	return nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	rootCmd.PersistentFlags().StringVar(&apiKeyFlag, "api-key", "", "環境変数より優先して使う Gemini API キーなのだ。")
	rootCmd.AddCommand(serveCmd, renderCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
