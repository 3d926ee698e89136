package session

import "github.com/shouni/gemini-character-kit/pkg/domain"

// referenceSlot は顔参照・スタイル参照それぞれの保持枠です。
// 差し替えと削除の際、前の画像のプレビューハンドルを必ず解放します。
// 排他は Session 側のロックに委ねます。
type referenceSlot struct {
	current *domain.ReferenceImage
}

// set は画像を差し替え、前の画像を解放します。
func (s *referenceSlot) set(img *domain.ReferenceImage) {
	s.current.Release()
	s.current = img
}

// clear は画像を取り除き、解放します。
func (s *referenceSlot) clear() {
	s.current.Release()
	s.current = nil
}

func (s *referenceSlot) get() *domain.ReferenceImage {
	return s.current
}

func (s *referenceSlot) has() bool {
	return s.current != nil
}
