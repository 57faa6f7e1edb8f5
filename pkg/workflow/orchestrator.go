package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/shouni/nanobanana-kit/pkg/domain"
	"github.com/shouni/nanobanana-kit/pkg/selection"
	"github.com/shouni/nanobanana-kit/pkg/session"
)

// State は Orchestrator の現在位置です。
type State string

const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
	StateGenerated  State = "generated"
	StatePublishing State = "publishing"
	StatePublished  State = "published"
)

// ImageGenerator は生成サービスコラボレーターの窓口です。
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req domain.WorkflowRequest) (*domain.GeneratedResult, error)
}

// Publisher は投稿サービスコラボレーターの窓口です。
type Publisher interface {
	Publish(ctx context.Context, image []byte, caption, token string) (*domain.PublishResult, error)
}

// Orchestrator は生成と投稿を順序付ける状態機械です。
// 同時に進行できる生成呼び出しは1つ、投稿呼び出しも1つで、多重トリガーは
// キューイングもキャンセルもせず ErrBusy で拒否します。進行中のリモート
// 呼び出しはキャンセルされず、完了（成功または失敗）まで走り切ります。
// ミューテックスは状態語を守るだけで、リモート呼び出しをまたいで保持しません。
type Orchestrator struct {
	mu        sync.Mutex
	state     State
	gate      *session.Gate
	selection *selection.Set
	generator ImageGenerator
	publisher Publisher
	result    *domain.GeneratedResult
}

// NewOrchestrator は依存関係を注入して Idle 状態で初期化します。
func NewOrchestrator(gate *session.Gate, sel *selection.Set, gen ImageGenerator, pub Publisher) (*Orchestrator, error) {
	if gate == nil {
		return nil, fmt.Errorf("gate (session.Gate) is required")
	}
	if sel == nil {
		return nil, fmt.Errorf("sel (selection.Set) is required")
	}
	if gen == nil {
		return nil, fmt.Errorf("gen (ImageGenerator) is required")
	}
	if pub == nil {
		return nil, fmt.Errorf("pub (Publisher) is required")
	}

	return &Orchestrator{
		state:     StateIdle,
		gate:      gate,
		selection: sel,
		generator: gen,
		publisher: pub,
	}, nil
}

// State は現在の状態を返します。
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Result は保持中の生成結果を返します。なければ nil です。
func (o *Orchestrator) Result() *domain.GeneratedResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result
}

// Generate は現在のプロンプト・選択・アスペクト比から生成を実行します。
// 空プロンプトは状態を変えずに ValidationError、進行中の呼び出しがあれば
// ErrBusy です。前回の結果は新しい結果が到着した瞬間にのみ破棄されます。
func (o *Orchestrator) Generate(ctx context.Context, prompt, aspectRatio string) (*domain.GeneratedResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, &domain.ValidationError{Field: "prompt", Reason: "プロンプトを入力してください"}
	}

	o.mu.Lock()
	if o.state == StateGenerating || o.state == StatePublishing {
		o.mu.Unlock()
		return nil, domain.ErrBusy
	}
	prev := o.state
	o.state = StateGenerating

	snapshot := o.selection.Payloads()
	token, _ := o.gate.CurrentToken()
	o.mu.Unlock()

	req := domain.WorkflowRequest{
		Prompt:      prompt,
		Images:      snapshot,
		AspectRatio: domain.ResolveAspectRatio(aspectRatio, len(snapshot)),
		Token:       token,
	}

	slog.Info("画像生成を開始します", "references", len(snapshot), "aspect_ratio", req.AspectRatio)
	result, err := o.generator.GenerateImage(ctx, req)

	o.mu.Lock()
	defer o.mu.Unlock()

	if err != nil {
		// 失敗時は試行前の状態へ戻す。保持中の結果はそのまま使える。
		o.state = prev
		if errors.Is(err, domain.ErrUnauthenticated) {
			o.gate.Invalidate()
		}
		return nil, asGenerationError(err)
	}

	// 前回結果の破棄は新しい結果が到着したこの時点でのみ行う
	o.result = result
	o.state = StateGenerated
	return result, nil
}

// Publish は保持中の生成結果とキャプションを投稿します。
// 失敗しても結果は保持されたままで、再生成なしに再試行できます。
func (o *Orchestrator) Publish(ctx context.Context, caption string) (*domain.PublishResult, error) {
	if strings.TrimSpace(caption) == "" {
		return nil, &domain.ValidationError{Field: "caption", Reason: "投稿テキストを入力してください"}
	}

	o.mu.Lock()
	if o.state == StateGenerating || o.state == StatePublishing {
		o.mu.Unlock()
		return nil, domain.ErrBusy
	}
	if o.result == nil {
		o.mu.Unlock()
		return nil, &domain.ValidationError{Field: "result", Reason: "先に画像を生成してください"}
	}
	o.state = StatePublishing

	image := o.result.ImageBytes
	token, _ := o.gate.CurrentToken()
	o.mu.Unlock()

	res, err := o.publisher.Publish(ctx, image, caption, token)

	o.mu.Lock()
	defer o.mu.Unlock()

	if err != nil {
		// 結果は保持したまま Generated へ戻る
		o.state = StateGenerated
		if errors.Is(err, domain.ErrUnauthenticated) {
			o.gate.Invalidate()
		}
		return nil, asPublishError(err)
	}

	o.state = StatePublished
	slog.Info("投稿が完了しました", "publication_id", res.PublicationID)
	return res, nil
}

// Reset は保持中の結果を破棄して Idle へ戻します（画面遷移相当）。
// 進行中の呼び出しがある間は拒否します。
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StateGenerating || o.state == StatePublishing {
		return domain.ErrBusy
	}
	o.result = nil
	o.state = StateIdle
	return nil
}

// asGenerationError はリモートメッセージを逐語で保持したまま分類を整えます。
func asGenerationError(err error) error {
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) || errors.Is(err, domain.ErrNoImageProduced) || errors.Is(err, domain.ErrUnauthenticated) {
		return err
	}
	return &domain.GenerationError{Message: err.Error(), Err: err}
}

// asPublishError は投稿失敗の分類を整えます。
func asPublishError(err error) error {
	var pubErr *domain.PublishError
	if errors.As(err, &pubErr) || errors.Is(err, domain.ErrUnauthenticated) {
		return err
	}
	return &domain.PublishError{Message: err.Error(), Err: err}
}
