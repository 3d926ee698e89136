package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-http-kit/httpkit"
	"github.com/spf13/cobra"

	"github.com/shouni/gemini-character-kit/pkg/domain"
	"github.com/shouni/gemini-character-kit/pkg/generator"
	"github.com/shouni/gemini-character-kit/pkg/prompts"
	"github.com/shouni/gemini-character-kit/pkg/session"
)

// renderRecipe はレシピファイルの構造です。profile 以外は省略できます。
type renderRecipe struct {
	Profile domain.CharacterProfile   `json:"profile"`
	Scene   domain.ScenePlan          `json:"scene"`
	Options *domain.GenerationOptions `json:"options"`
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "レシピファイルから1枚のポートレートを生成して保存するのだ。",
	Long: "JSON のレシピ（プロフィール・シーン・オプション）を読み込み、プロンプトを組み立てて" +
		"画像を1枚生成し、ローカルファイルに保存するのだ。参照画像は URL で指定できるのだよ。",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		recipePath, _ := cmd.Flags().GetString("recipe")
		faceURL, _ := cmd.Flags().GetString("face-ref")
		styleURL, _ := cmd.Flags().GetString("style-ref")
		outputDir, _ := cmd.Flags().GetString("output-dir")

		raw, err := os.ReadFile(recipePath)
		if err != nil {
			return fmt.Errorf("レシピファイルの読み込みに失敗したのだ: %w", err)
		}
		var recipe renderRecipe
		if err := json.Unmarshal(raw, &recipe); err != nil {
			return fmt.Errorf("レシピの JSON を解析できないのだ: %w", err)
		}
		opts := domain.DefaultGenerationOptions()
		if recipe.Options != nil {
			opts = *recipe.Options
		}

		// 参照画像の取り込み（URL 指定があるときだけ）
		var faceRef, styleRef *domain.ReferenceImage
		if faceURL != "" || styleURL != "" {
			httpClient := httpkit.New(cfg.HTTPTimeout)
			imgCache := cache.New(cacheExpiration, cacheCleanupInterval)
			loader, err := session.NewReferenceLoader(httpClient, imgCache, cacheExpiration)
			if err != nil {
				return err
			}
			if faceURL != "" {
				if faceRef, err = loader.Load(ctx, faceURL); err != nil {
					return err
				}
			}
			if styleURL != "" {
				if styleRef, err = loader.Load(ctx, styleURL); err != nil {
					return err
				}
			}
		}

		composer := prompts.NewComposer(cfg.WatermarkText)
		prompt := composer.Compose(recipe.Profile, recipe.Scene, opts, faceRef != nil, styleRef != nil)
		seed := recipe.Profile.StableSeed()

		gen, err := generator.New(ctx, cfg.GeminiAPIKey, cfg.ImageModel, nil)
		if err != nil {
			return fmt.Errorf("画像生成クライアントの初期化に失敗しました: %w", err)
		}

		slog.Info("ポートレート生成を開始します",
			slog.String("character", recipe.Profile.CharacterName),
			slog.Int("seed", int(seed)),
		)
		started := time.Now()

		res, err := gen.Generate(ctx, generator.Request{
			Prompt:   prompt,
			FaceRef:  faceRef,
			StyleRef: styleRef,
			Seed:     &seed,
		})
		if err != nil {
			return fmt.Errorf("画像の生成に失敗したのだ: %w", err)
		}

		// MIMEタイプから拡張子を決定
		extension := ".png"
		if extensions, err := mime.ExtensionsByType(res.MIMEType); err == nil && len(extensions) > 0 {
			extension = extensions[0]
		} else {
			slog.Warn("MIMEタイプから拡張子を決定できませんでした。.png を使います",
				slog.String("mime_type", res.MIMEType))
		}

		name := recipe.Profile.CharacterName
		if name == "" {
			name = "unnamed"
		}
		outputPath := filepath.Join(outputDir, fmt.Sprintf("portrait_%s%s", name, extension))
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("出力ディレクトリの作成に失敗したのだ: %w", err)
		}
		if err := os.WriteFile(outputPath, res.Data, 0644); err != nil {
			return fmt.Errorf("画像の保存に失敗したのだ: %w", err)
		}

		slog.Info("生成が完了しました",
			slog.String("output_path", outputPath),
			slog.Duration("elapsed", time.Since(started)),
		)
		fmt.Printf("🎨 ポートレート完成: %s (seed: %d)\n", outputPath, seed)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringP("recipe", "r", "recipe.json", "レシピ（profile/scene/options）を定義したJSONパスなのだ。")
	renderCmd.Flags().String("face-ref", "", "顔参照画像のURLなのだ。")
	renderCmd.Flags().String("style-ref", "", "スタイル参照画像のURLなのだ。")
	renderCmd.Flags().StringP("output-dir", "o", "output", "生成された画像を保存するディレクトリなのだ。")
}
