package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func sampleProfile() CharacterProfile {
	return CharacterProfile{
		CharacterName: "Nova",
		Proportion:    "chibi",
		Material:      "wood style",
		FaceShape:     "round",
		Outfit:        "school uniform",
		OutfitColor:   "navy blue",
		Lighting:      "soft studio lighting",
	}
}

func TestSuggestion_Apply(t *testing.T) {
	t.Run("存在するフィールドだけが上書きされ、他は維持されるのだ", func(t *testing.T) {
		profile := sampleProfile()
		scene := ScenePlan{Pose: "standing", Angle: "low"}

		s := Suggestion{
			Material: strPtr("clay style"),
			Pose:     strPtr("sitting"),
		}

		gotProfile, gotScene := s.Apply(profile, scene)

		assert.Equal(t, "clay style", gotProfile.Material)
		assert.Equal(t, "sitting", gotScene.Pose)
		// シーンの angle は提案に含まれないので維持される
		assert.Equal(t, "low", gotScene.Angle)

		// 提案に含まれないプロフィールは一切変わらない
		expected := profile
		expected.Material = "clay style"
		assert.Equal(t, expected, gotProfile)
	})

	t.Run("空文字のポインタも『存在する』ので空で上書きするのだ", func(t *testing.T) {
		profile := sampleProfile()
		s := Suggestion{Outfit: strPtr("")}

		gotProfile, _ := s.Apply(profile, ScenePlan{})

		assert.Equal(t, "", gotProfile.Outfit)
		assert.Equal(t, "navy blue", gotProfile.OutfitColor)
	})

	t.Run("シーン側は空でない値だけが上書きするのだ", func(t *testing.T) {
		scene := ScenePlan{Pose: "standing", Background: "beach"}
		s := Suggestion{
			Pose:       strPtr(""),
			Background: strPtr("night city"),
		}

		_, gotScene := s.Apply(CharacterProfile{}, scene)

		assert.Equal(t, "standing", gotScene.Pose)
		assert.Equal(t, "night city", gotScene.Background)
	})

	t.Run("シーン提案はプロフィールに混入しない", func(t *testing.T) {
		profile := sampleProfile()
		s := Suggestion{
			Pose:       strPtr("running"),
			Angle:      strPtr("bird's-eye view"),
			Background: strPtr("forest"),
		}

		gotProfile, gotScene := s.Apply(profile, ScenePlan{})

		assert.Equal(t, profile, gotProfile)
		assert.Equal(t, ScenePlan{Pose: "running", Angle: "bird's-eye view", Background: "forest"}, gotScene)
	})

	t.Run("空の提案は何も変えない", func(t *testing.T) {
		profile := sampleProfile()
		scene := ScenePlan{Pose: "standing", Angle: "low", Background: "cafe"}

		gotProfile, gotScene := Suggestion{}.Apply(profile, scene)

		assert.Equal(t, profile, gotProfile)
		assert.Equal(t, scene, gotScene)
	})
}

func TestSuggestion_IsEmpty(t *testing.T) {
	assert.True(t, Suggestion{}.IsEmpty())
	assert.False(t, Suggestion{Pose: strPtr("sitting")}.IsEmpty())
	assert.False(t, Suggestion{Outfit: strPtr("")}.IsEmpty())
}

func TestCharacterProfile_StableSeed(t *testing.T) {
	t.Run("同じ名前なら同じシードになるのだ", func(t *testing.T) {
		a := CharacterProfile{CharacterName: "Nova"}
		b := CharacterProfile{CharacterName: "Nova"}
		assert.Equal(t, a.StableSeed(), b.StableSeed())
	})

	t.Run("シードは常に非負", func(t *testing.T) {
		for _, name := range []string{"", "Nova", "ずんだもん", "MHR"} {
			p := CharacterProfile{CharacterName: name}
			assert.GreaterOrEqual(t, p.StableSeed(), int32(0), "name=%q", name)
		}
	})

	t.Run("空の名前は Unnamed として扱われる", func(t *testing.T) {
		empty := CharacterProfile{}
		named := CharacterProfile{CharacterName: "Unnamed"}
		assert.Equal(t, named.StableSeed(), empty.StableSeed())
	})
}
