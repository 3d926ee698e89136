package prompts

// プロンプトの骨格を定義する定数群です。構成は4ブロック固定:
// ブループリント → 参照画像ルール → シーン → 最終指示。
const (
	// PrimaryDirective はキャラクターデザインがロック済みであることを宣言します。
	PrimaryDirective = `**PRIMARY DIRECTIVE: ABSOLUTE CHARACTER CONSISTENCY**

You are a meticulous character artist. Your mission is to render a single, pre-defined character in a new scene. The character's design is **LOCKED** and **IMMUTABLE**. Your only task is to change the scene composition (pose, angle, background).`

	// BlueprintHeader は不変ブループリントブロックの見出しです。
	BlueprintHeader = `**STEP 1: MEMORIZE THE UNCHANGEABLE CHARACTER BLUEPRINT**
This is the character's permanent design. It must be followed with 100% accuracy in every detail.`

	// ReferenceHeader は参照画像ルールブロックの見出しです。
	ReferenceHeader = `**STEP 2: REVIEW THE REFERENCE IMAGE RULES (IF ANY)**`

	// NoReferenceStatement は参照画像なしのときの単独ステートメントです。
	NoReferenceStatement = `- No reference images provided. Adhere strictly to the text Blueprint.`

	// StyleReferenceRule はスタイル参照の利用範囲を質感とパレットに限定します。
	StyleReferenceRule = `- **Style Reference Rule**: Use the style reference ONLY for artistic texture and color palette. DO NOT copy its subject matter.`

	// SceneHeader はシーン構図ブロックの見出しです。
	SceneHeader = `**STEP 3: COMPOSE THE NEW SCENE**
Take the exact character from the Blueprint and place them in this new composition. DO NOT ALTER THE BLUEPRINT.`

	// FinalHeader は最終指示ブロックの見出しです。
	FinalHeader = `**FINAL COMMAND & QUALITY CHECK:**`

	// SelfCheck は出力前の自己検証指示です。ブループリント一致の確認と、
	// 前回生成から変わってよいのは構図3要素のみという制約を明示します。
	SelfCheck = `Before finalizing, verify: Does the character's outfit, face, and style in the output image EXACTLY match the **UNCHANGEABLE CHARACTER BLUEPRINT**? If not, you have failed. The only elements that should differ from a previous generation are the Pose, Camera Angle, and Background.`
)

// 空フィールドの中立フォールバック。構成は常に全要素を明示します。
const (
	FallbackName       = "Unnamed"
	FallbackPose       = "neutral standing pose"
	FallbackAngle      = "eye-level shot"
	FallbackBackground = "plain neutral background"
)

// DefaultWatermarkText は透かし指示に使う既定の文字列です。
const DefaultWatermarkText = "MHR Studio"
