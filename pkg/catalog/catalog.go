// Package catalog は、レシピ各フィールドの選択肢カタログを提供します。
// UI のセレクトボックスとアシスタントへの指示文（AVAILABLE OPTIONS）の
// 両方がここを唯一の情報源とします。
package catalog

import (
	"fmt"
	"strings"
)

// Field はカタログを持つレシピフィールドの識別子です。
// 値は外部サービスとの JSON 契約に合わせたキー名そのものです。
type Field string

const (
	FieldProportion  Field = "proportion"
	FieldMaterial    Field = "material"
	FieldFaceShape   Field = "face_shape"
	FieldEyebrows    Field = "eyebrows"
	FieldEyes        Field = "eyes"
	FieldLips        Field = "lips"
	FieldNose        Field = "nose"
	FieldHairOrHijab Field = "hair_hijab"
	FieldAccessories Field = "accessories"
	FieldOutfit      Field = "outfit"
	FieldLighting    Field = "lighting"
	FieldPose        Field = "pose"
	FieldAngle       Field = "angle"
	FieldBackground  Field = "background"
)

// fieldOrder は指示文での列挙順を固定します。マップの走査順に依存しない。
var fieldOrder = []Field{
	FieldProportion, FieldMaterial, FieldFaceShape, FieldEyebrows,
	FieldEyes, FieldLips, FieldNose, FieldHairOrHijab, FieldAccessories,
	FieldOutfit, FieldLighting, FieldPose, FieldAngle, FieldBackground,
}

var options = map[Field][]string{
	FieldProportion: {
		"chibi (2 heads tall)", "cute (3 heads tall)", "stylized (5 heads tall)",
		"semi-realistic (6 heads tall)", "realistic (7.5 heads tall)",
	},
	FieldMaterial: {
		"clay style", "wood style", "felt wool style", "plastic toy style",
		"porcelain style", "soft 3D render style", "flat vector style",
		"watercolor style", "anime cel style", "pixel art style",
	},
	FieldFaceShape: {
		"round", "oval", "heart-shaped", "square", "long",
	},
	FieldEyebrows: {
		"thin arched", "straight natural", "thick bold", "soft rounded",
	},
	FieldEyes: {
		"big sparkling", "almond", "droopy friendly", "sharp confident",
		"closed smiling",
	},
	FieldLips: {
		"small smile", "wide grin", "neutral soft", "tiny dot mouth",
	},
	FieldNose: {
		"tiny dot", "small button", "subtle line", "defined",
	},
	FieldHairOrHijab: {
		"short neat hair", "long straight hair", "wavy shoulder-length hair",
		"curly bob", "ponytail", "bun", "plain hijab", "patterned hijab",
		"pashmina hijab",
	},
	FieldAccessories: {
		"none", "round glasses", "square glasses", "earrings", "headband",
		"bow ribbon", "necklace", "wrist watch",
	},
	FieldOutfit: {
		"casual t-shirt and jeans", "hoodie", "school uniform",
		"office blazer", "batik shirt", "gamis dress", "apron over shirt",
		"sporty tracksuit", "doctor's coat", "chef's uniform",
	},
	FieldLighting: {
		"soft studio lighting", "warm golden hour", "bright daylight",
		"dramatic rim light", "cozy indoor lamp", "neon glow",
	},
	FieldPose: {
		"standing confidently", "sitting", "waving hello", "thumbs up",
		"arms crossed", "holding a product", "pointing forward", "jumping",
		"running", "swimming", "typing on a laptop", "drinking coffee",
	},
	FieldAngle: {
		"eye-level shot", "low angle", "high angle", "three-quarter view",
		"side profile", "close-up portrait", "full body shot",
	},
	FieldBackground: {
		"plain neutral background", "pastel gradient", "cozy cafe",
		"modern office", "city street", "tropical beach", "classroom",
		"night city lights", "forest park",
	},
}

// Options は指定フィールドの選択肢を返します。未知のフィールドは nil です。
// 返り値はコピーなので呼び出し元が変更しても安全です。
func Options(field Field) []string {
	src, ok := options[field]
	if !ok {
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Fields は列挙順のフィールド一覧を返します。
func Fields() []Field {
	out := make([]Field, len(fieldOrder))
	copy(out, fieldOrder)
	return out
}

// Contains は値がカタログに含まれるかを返します。
// マージ処理はこれを呼びません（外部サービスを信頼する方針）。UI 側の
// 任意チェック用に残しています。
func Contains(field Field, value string) bool {
	for _, v := range options[field] {
		if v == value {
			return true
		}
	}
	return false
}

// PromptOptionsBlock はアシスタントのシステム指示に埋め込む
// AVAILABLE OPTIONS ブロックを生成します。
func PromptOptionsBlock() string {
	var sb strings.Builder
	sb.WriteString("AVAILABLE OPTIONS (Choose values from these lists):\n")
	for _, field := range fieldOrder {
		quoted := make([]string, 0, len(options[field]))
		for _, v := range options[field] {
			quoted = append(quoted, fmt.Sprintf("%q", v))
		}
		sb.WriteString(fmt.Sprintf("- %s: [%s]\n", field, strings.Join(quoted, ", ")))
	}
	return sb.String()
}
