package domain

import (
	"crypto/sha256"
	"encoding/binary"
)

// CharacterProfile はキャラクターの恒久的な視覚設計（ブループリント）を保持します。
// 一度生成を依頼したら、特に outfit / outfit_color はシーン指示に関わらず
// 不変として扱われるのがこのキットの大前提です。
type CharacterProfile struct {
	CharacterName   string `json:"characterName"`
	Proportion      string `json:"proportion"`
	Material        string `json:"material"`
	FaceShape       string `json:"face_shape"`
	Eyebrows        string `json:"eyebrows"`
	Eyes            string `json:"eyes"`
	Lips            string `json:"lips"`
	Nose            string `json:"nose"`
	HairOrHijab     string `json:"hair_hijab"`
	Accessories     string `json:"accessories"`
	Outfit          string `json:"outfit"`
	OutfitColor     string `json:"outfit_color"`
	Lighting        string `json:"lighting"`
	SpecificDetails string `json:"specificDetails"`
}

// ScenePlan は1回の生成ごとに変わってよい構図パラメータです。
// ブループリントとは独立しており、提案によって部分的に上書きされます。
type ScenePlan struct {
	Pose       string `json:"pose"`
	Angle      string `json:"angle"`
	Background string `json:"background"`
}

// 解像度ティアの定義なのだ
const (
	Resolution1K = "1k"
	Resolution2K = "2k"
	Resolution4K = "4k"
)

// GenerationOptions はユーザーが直接制御する生成オプションです。
// 提案（Suggestion）の対象外です。
type GenerationOptions struct {
	Resolution   string `json:"resolution"`
	AddWatermark bool   `json:"add_watermark"`
}

// DefaultGenerationOptions はセッション開始時の既定値を返します。
func DefaultGenerationOptions() GenerationOptions {
	return GenerationOptions{
		Resolution:   Resolution1K,
		AddWatermark: true,
	}
}

// StableSeed はキャラクター名から決定論的なシード値を生成します。
// 名前が同じなら同じシードになるため、同一ブループリントの再生成で
// アイデンティティが揺れにくくなります。
func (p CharacterProfile) StableSeed() int32 {
	name := p.CharacterName
	if name == "" {
		name = "Unnamed"
	}
	hash := sha256.Sum256([]byte(name))
	seed := int32(binary.BigEndian.Uint32(hash[:4]))
	// Gemini のシード値は正の数が望ましいため、最上位ビットを落とす
	return seed & 0x7FFFFFFF
}
