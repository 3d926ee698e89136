package domain

// Role はチャットターンの発話者です。
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn はアシスタントとの対話1ターンを表します。
// アシスタント側のターンは、ユーザーが明示的に適用できる Suggestion を
// 持つことがあります。自動適用はされません。
type ChatTurn struct {
	ID           string      `json:"id"`
	Role         Role        `json:"role"`
	Text         string      `json:"text"`
	ImagePreview string      `json:"image_preview,omitempty"`
	Suggestion   *Suggestion `json:"suggestion,omitempty"`
}

// Conversation は追記専用のチャットログです。削除操作は提供しません。
// 並び順は挿入順であり、意味を持ちます。
type Conversation struct {
	turns []ChatTurn
}

// NewConversation は任意の初期ターン（挨拶など）を持つログを生成します。
func NewConversation(initial ...ChatTurn) *Conversation {
	c := &Conversation{}
	c.turns = append(c.turns, initial...)
	return c
}

// Append はターンを末尾に追加します。
func (c *Conversation) Append(turn ChatTurn) {
	c.turns = append(c.turns, turn)
}

// Turns は全ターンの防御的コピーを返します。
func (c *Conversation) Turns() []ChatTurn {
	out := make([]ChatTurn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len はターン数を返します。
func (c *Conversation) Len() int {
	return len(c.turns)
}

// Latest は最後のターンを返します。空の場合は false を返します。
func (c *Conversation) Latest() (ChatTurn, bool) {
	if len(c.turns) == 0 {
		return ChatTurn{}, false
	}
	return c.turns[len(c.turns)-1], true
}
