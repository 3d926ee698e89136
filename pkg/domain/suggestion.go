package domain

// Suggestion はアシスタントが提案する部分的なプロフィールとシーンの組です。
// ポインタが nil のフィールドは「提案に含まれない」ことを意味し、適用時に
// 既存値が維持されます。空文字のポインタは「空で上書きする」提案です。
// 検証は行いません。外部サービスがカタログ内の値を返すことを信頼します。
type Suggestion struct {
	CharacterName   *string `json:"characterName,omitempty"`
	Proportion      *string `json:"proportion,omitempty"`
	Material        *string `json:"material,omitempty"`
	FaceShape       *string `json:"face_shape,omitempty"`
	Eyebrows        *string `json:"eyebrows,omitempty"`
	Eyes            *string `json:"eyes,omitempty"`
	Lips            *string `json:"lips,omitempty"`
	Nose            *string `json:"nose,omitempty"`
	HairOrHijab     *string `json:"hair_hijab,omitempty"`
	Accessories     *string `json:"accessories,omitempty"`
	Outfit          *string `json:"outfit,omitempty"`
	OutfitColor     *string `json:"outfit_color,omitempty"`
	Lighting        *string `json:"lighting,omitempty"`
	SpecificDetails *string `json:"specificDetails,omitempty"`

	// シーン側の提案。CharacterProfile の一部ではなく ScenePlan に適用される。
	Pose       *string `json:"pose,omitempty"`
	Angle      *string `json:"angle,omitempty"`
	Background *string `json:"background,omitempty"`
}

// IsEmpty は提案が1フィールドも含まないかどうかを返します。
func (s Suggestion) IsEmpty() bool {
	ptrs := []*string{
		s.CharacterName, s.Proportion, s.Material, s.FaceShape, s.Eyebrows,
		s.Eyes, s.Lips, s.Nose, s.HairOrHijab, s.Accessories, s.Outfit,
		s.OutfitColor, s.Lighting, s.SpecificDetails,
		s.Pose, s.Angle, s.Background,
	}
	for _, p := range ptrs {
		if p != nil {
			return false
		}
	}
	return true
}

// Apply は現在のプロフィールとシーンに提案をマージした新しい値を返します。
// 純粋関数であり、引数は変更しません。
//
// マージ規則:
//   - プロフィール側: 提案に存在するフィールド（空文字含む）だけを上書きする。
//   - シーン側: 提案に存在し、かつ空でない場合だけ上書きする。
//
// 1つの Suggestion が2つの独立した状態スライスへ分配される点がこの操作の
// 本質で、適用は常に両スライス同時の一括更新として扱います。
func (s Suggestion) Apply(profile CharacterProfile, scene ScenePlan) (CharacterProfile, ScenePlan) {
	applyField(&profile.CharacterName, s.CharacterName)
	applyField(&profile.Proportion, s.Proportion)
	applyField(&profile.Material, s.Material)
	applyField(&profile.FaceShape, s.FaceShape)
	applyField(&profile.Eyebrows, s.Eyebrows)
	applyField(&profile.Eyes, s.Eyes)
	applyField(&profile.Lips, s.Lips)
	applyField(&profile.Nose, s.Nose)
	applyField(&profile.HairOrHijab, s.HairOrHijab)
	applyField(&profile.Accessories, s.Accessories)
	applyField(&profile.Outfit, s.Outfit)
	applyField(&profile.OutfitColor, s.OutfitColor)
	applyField(&profile.Lighting, s.Lighting)
	applyField(&profile.SpecificDetails, s.SpecificDetails)

	applySceneField(&scene.Pose, s.Pose)
	applySceneField(&scene.Angle, s.Angle)
	applySceneField(&scene.Background, s.Background)

	return profile, scene
}

func applyField(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func applySceneField(dst *string, src *string) {
	if src != nil && *src != "" {
		*dst = *src
	}
}
