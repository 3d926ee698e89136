// Package session は、1人のユーザーが操作するキャラクター制作セッションの
// 状態（プロフィール・シーン・参照画像・生成結果・会話ログ）を保持し、
// 生成と提案の各操作を排他制御つきで提供します。
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/shouni/gemini-character-kit/pkg/apierr"
	"github.com/shouni/gemini-character-kit/pkg/assistant"
	"github.com/shouni/gemini-character-kit/pkg/domain"
	"github.com/shouni/gemini-character-kit/pkg/generator"
	"github.com/shouni/gemini-character-kit/pkg/prompts"
)

// ErrBusy は、進行中のリクエストがあるうちに同種の操作を重ねて
// 要求した場合に返ります。先行リクエストはキャンセルされません。
var ErrBusy = errors.New("リクエストが進行中です。完了を待ってから再試行してください")

// ErrSuggestionNotFound は、指定ターンが存在しないか提案を持たない場合に返ります。
var ErrSuggestionNotFound = errors.New("適用できる提案が見つかりません")

// greetingText はセッション開始時のアシスタント挨拶です。
const greetingText = "Hello! Describe the character you want to create, or attach reference images. I'll propose a complete visual recipe and a test scene for you."

// ImageGenerator は画像生成クライアントの境界です。
type ImageGenerator interface {
	Generate(ctx context.Context, req generator.Request) (*generator.Result, error)
}

// Suggester は提案クライアントの境界です。
type Suggester interface {
	Suggest(ctx context.Context, req assistant.Request) (*assistant.Reply, error)
}

// Session は制作セッション1つぶんの状態を保持します。
// すべての公開メソッドは並行呼び出しに対して安全です。
type Session struct {
	mu sync.Mutex

	profile      domain.CharacterProfile
	scene        domain.ScenePlan
	options      domain.GenerationOptions
	faceRef      referenceSlot
	styleRef     referenceSlot
	result       domain.GenerationResult
	conversation *domain.Conversation

	composer  *prompts.Composer
	generator ImageGenerator
	assistant Suggester

	generating bool
	suggesting bool
}

// New はセッションを初期化します。会話ログには挨拶ターンが1件入った
// 状態で始まります。
func New(gen ImageGenerator, suggester Suggester, composer *prompts.Composer) (*Session, error) {
	if gen == nil {
		return nil, fmt.Errorf("gen (ImageGenerator) is required")
	}
	if suggester == nil {
		return nil, fmt.Errorf("suggester (Suggester) is required")
	}
	if composer == nil {
		return nil, fmt.Errorf("composer is required")
	}

	greeting := domain.ChatTurn{
		ID:   uuid.NewString(),
		Role: domain.RoleAssistant,
		Text: greetingText,
	}

	return &Session{
		options:      domain.DefaultGenerationOptions(),
		result:       domain.IdleResult(),
		conversation: domain.NewConversation(greeting),
		composer:     composer,
		generator:    gen,
		assistant:    suggester,
	}, nil
}

// Profile は現在のプロフィールを返します。
func (s *Session) Profile() domain.CharacterProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// SetProfile はプロフィールを置き換えます。カタログ検証は行いません。
func (s *Session) SetProfile(p domain.CharacterProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
}

// Scene は現在のシーン指定を返します。
func (s *Session) Scene() domain.ScenePlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene
}

// SetScene はシーン指定を置き換えます。
func (s *Session) SetScene(sc domain.ScenePlan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scene = sc
}

// Options は現在の生成オプションを返します。
func (s *Session) Options() domain.GenerationOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options
}

// SetOptions は生成オプションを置き換えます。
func (s *Session) SetOptions(opts domain.GenerationOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options = opts
}

// SetFaceReference は顔参照を差し替え、前の画像を解放します。
func (s *Session) SetFaceReference(img *domain.ReferenceImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faceRef.set(img)
}

// SetStyleReference はスタイル参照を差し替え、前の画像を解放します。
func (s *Session) SetStyleReference(img *domain.ReferenceImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.styleRef.set(img)
}

// ClearFaceReference は顔参照を取り除きます。
func (s *Session) ClearFaceReference() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faceRef.clear()
}

// ClearStyleReference はスタイル参照を取り除きます。
func (s *Session) ClearStyleReference() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.styleRef.clear()
}

// HasFaceReference は顔参照の有無を返します。
func (s *Session) HasFaceReference() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.faceRef.has()
}

// HasStyleReference はスタイル参照の有無を返します。
func (s *Session) HasStyleReference() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.styleRef.has()
}

// PromptPreview は現在の状態から組み立てられる指示文字列を返します。
// 生成を実行せずにプロンプトだけ確認する用途です。
func (s *Session) PromptPreview() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.composer.Compose(s.profile, s.scene, s.options, s.faceRef.has(), s.styleRef.has())
}

// Result は生成結果スロットの現在値を返します。
func (s *Session) Result() domain.GenerationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Conversation は会話ログ全ターンのコピーを返します。
func (s *Session) Conversation() []domain.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversation.Turns()
}

// Generate は現在の状態から画像を1枚生成し、結果スロットを上書きします。
// 進行中の生成がある場合は何も変えずに ErrBusy を返します。
// API の失敗はエラーとしてではなく失敗スロットとして返ります。
func (s *Session) Generate(ctx context.Context) (domain.GenerationResult, error) {
	s.mu.Lock()
	if s.generating {
		s.mu.Unlock()
		return domain.GenerationResult{}, ErrBusy
	}
	s.generating = true
	s.result = domain.LoadingResult()

	prompt := s.composer.Compose(s.profile, s.scene, s.options, s.faceRef.has(), s.styleRef.has())
	seed := s.profile.StableSeed()
	req := generator.Request{
		Prompt:   prompt,
		FaceRef:  s.faceRef.get(),
		StyleRef: s.styleRef.get(),
		Seed:     &seed,
	}
	s.mu.Unlock()

	res, err := s.generator.Generate(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generating = false

	if err != nil {
		classified := apierr.Classify(err)
		slog.WarnContext(ctx, "画像生成が失敗しました", "kind", classified.Kind)
		s.result = domain.FailureResult(classified.Message)
		return s.result, nil
	}

	s.result = domain.SuccessResult(res.Data, res.MIMEType)
	return s.result, nil
}

// SendMessage はユーザーの発話を会話ログに追記し、アシスタントの提案を
// 取得して応答ターンとして追記します。アシスタントの失敗も会話ターンに
// なり、エラーとしては返りません。ErrBusy のみエラーです。
// chatImage はこのメッセージ限りの添付であり、送信完了後に解放されます。
func (s *Session) SendMessage(ctx context.Context, text string, chatImage *domain.ReferenceImage) (domain.ChatTurn, error) {
	s.mu.Lock()
	if s.suggesting {
		s.mu.Unlock()
		chatImage.Release()
		return domain.ChatTurn{}, ErrBusy
	}
	s.suggesting = true

	userTurn := domain.ChatTurn{
		ID:   uuid.NewString(),
		Role: domain.RoleUser,
		Text: text,
	}
	if chatImage != nil {
		userTurn.ImagePreview = chatImage.Name
	}
	s.conversation.Append(userTurn)

	req := assistant.Request{
		UserText:  text,
		FaceRef:   s.faceRef.get(),
		StyleRef:  s.styleRef.get(),
		ChatImage: chatImage,
	}
	s.mu.Unlock()

	reply, err := s.assistant.Suggest(ctx, req)
	chatImage.Release()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggesting = false

	turn := domain.ChatTurn{
		ID:   uuid.NewString(),
		Role: domain.RoleAssistant,
	}
	if err != nil {
		classified := apierr.Classify(err)
		slog.WarnContext(ctx, "提案の取得に失敗しました", "kind", classified.Kind)
		turn.Text = classified.Message
	} else {
		turn.Text = reply.Explanation
		if !reply.Suggestion.IsEmpty() {
			suggestion := reply.Suggestion
			turn.Suggestion = &suggestion
		}
	}
	s.conversation.Append(turn)
	return turn, nil
}

// ApplySuggestion は指定ターンの提案をプロフィールとシーンへ一括適用します。
// 2つの状態スライスの更新は同一ロック内で行われ、片方だけが更新された
// 状態は外から観測できません。
func (s *Session) ApplySuggestion(turnID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, turn := range s.conversation.Turns() {
		if turn.ID != turnID {
			continue
		}
		if turn.Suggestion == nil {
			return ErrSuggestionNotFound
		}
		s.profile, s.scene = turn.Suggestion.Apply(s.profile, s.scene)
		return nil
	}
	return ErrSuggestionNotFound
}
