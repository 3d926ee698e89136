// Package prompts は、キャラクターレシピとシーン指定から画像生成 API 向けの
// 指示文字列を組み立てます。純粋な文字列構築であり、失敗経路はありません。
package prompts

import (
	"fmt"
	"strings"

	"github.com/shouni/gemini-character-kit/pkg/domain"
)

// Composer はブループリントプロンプトの組み立てを担当します。
type Composer struct {
	watermarkText string
}

// NewComposer は Composer を生成します。watermarkText が空の場合は
// 既定の透かし文字列を使います。
func NewComposer(watermarkText string) *Composer {
	if watermarkText == "" {
		watermarkText = DefaultWatermarkText
	}
	return &Composer{watermarkText: watermarkText}
}

// Compose はプロフィール・シーン・オプション・参照画像の有無から、1本の
// 指示文字列を生成します。決定的かつ全域的で、空フィールドは中立的な
// 文言に退化します。
func (c *Composer) Compose(
	profile domain.CharacterProfile,
	scene domain.ScenePlan,
	opts domain.GenerationOptions,
	hasFaceRef bool,
	hasStyleRef bool,
) string {
	var sb strings.Builder

	sb.WriteString(PrimaryDirective)
	sb.WriteString("\n\n")

	// STEP 1: 不変ブループリント
	sb.WriteString(BlueprintHeader)
	sb.WriteString("\n")
	sb.WriteString(c.blueprintBlock(profile))
	sb.WriteString("\n\n")

	// STEP 2: 参照画像ルール
	sb.WriteString(ReferenceHeader)
	sb.WriteString("\n")
	sb.WriteString(c.referenceBlock(profile, hasFaceRef, hasStyleRef))
	sb.WriteString("\n\n")

	// STEP 3: シーン構図
	sb.WriteString(SceneHeader)
	sb.WriteString("\n")
	sb.WriteString(c.sceneBlock(scene))
	sb.WriteString("\n\n")

	// 最終指示
	sb.WriteString(FinalHeader)
	sb.WriteString("\n")
	sb.WriteString(c.finalBlock(opts))

	return strings.TrimSpace(sb.String())
}

// blueprintBlock はキャラクターの恒久設計を列挙します。
// 衣装の行だけは恒久・交渉不可であることをシーンの例付きで強調します。
func (c *Composer) blueprintBlock(p domain.CharacterProfile) string {
	name := p.CharacterName
	if name == "" {
		name = FallbackName
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("- **Character Name**: %q\n", name))
	sb.WriteString(fmt.Sprintf("- **Core Style**: A '%s' character, rendered in a '%s' style.\n", p.Proportion, p.Material))
	sb.WriteString(fmt.Sprintf("- **Face Blueprint**: '%s' face, '%s' eyebrows, '%s' eyes, '%s' nose, '%s' lips.\n",
		p.FaceShape, p.Eyebrows, p.Eyes, p.Nose, p.Lips))
	sb.WriteString(fmt.Sprintf("- **Styling Blueprint**: '%s' with '%s'.\n", p.HairOrHijab, p.Accessories))
	sb.WriteString(fmt.Sprintf(
		"- **OUTFIT BLUEPRINT (PERMANENT)**: The character ALWAYS wears a '%s' style outfit with the color scheme '%s'. "+
			"This is NON-NEGOTIABLE. Do not change the outfit for any reason, even if the pose seems to suggest different clothing. "+
			"For example, if the pose is 'swimming', the character must be depicted swimming in this exact outfit.\n",
		p.Outfit, p.OutfitColor))
	sb.WriteString(fmt.Sprintf("- **Lighting Blueprint**: Lit with '%s'.\n", p.Lighting))

	if p.SpecificDetails != "" {
		sb.WriteString(fmt.Sprintf("- **Additional Blueprint Details**: Must include: %q.", p.SpecificDetails))
	} else {
		sb.WriteString("- **Additional Blueprint Details**: None.")
	}
	return sb.String()
}

// referenceBlock は参照画像ごとの利用範囲ルールを出力します。
// どちらも無い場合はテキストブループリントへの厳守宣言のみを出します。
func (c *Composer) referenceBlock(p domain.CharacterProfile, hasFaceRef, hasStyleRef bool) string {
	if !hasFaceRef && !hasStyleRef {
		return NoReferenceStatement
	}

	var rules []string
	if hasFaceRef {
		rules = append(rules, fmt.Sprintf(
			"- **Face Reference Rule**: Use the face reference ONLY for facial structure. "+
				"IGNORE its photographic style. Apply the Style Blueprint ('%s') to the face structure.",
			p.Material))
	}
	if hasStyleRef {
		rules = append(rules, StyleReferenceRule)
	}
	return strings.Join(rules, "\n")
}

func (c *Composer) sceneBlock(s domain.ScenePlan) string {
	pose := s.Pose
	if pose == "" {
		pose = FallbackPose
	}
	angle := s.Angle
	if angle == "" {
		angle = FallbackAngle
	}
	background := s.Background
	if background == "" {
		background = FallbackBackground
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("- **Pose**: %s\n", pose))
	sb.WriteString(fmt.Sprintf("- **Camera Angle**: %s\n", angle))
	sb.WriteString(fmt.Sprintf("- **Background**: %s", background))
	return sb.String()
}

func (c *Composer) finalBlock(opts domain.GenerationOptions) string {
	resolution := opts.Resolution
	if resolution == "" {
		resolution = domain.Resolution1K
	}

	watermark := "No watermark."
	if opts.AddWatermark {
		watermark = fmt.Sprintf("Add a discreet %q watermark.", c.watermarkText)
	}

	return fmt.Sprintf("Generate a %s image. %s %s", resolution, watermark, SelfCheck)
}
