package workflow

import (
	"fmt"

	"github.com/shouni/nanobanana-kit/pkg/adapters"
	"github.com/shouni/nanobanana-kit/pkg/config"
	"github.com/shouni/nanobanana-kit/pkg/generator"
	"github.com/shouni/nanobanana-kit/pkg/history"
	"github.com/shouni/nanobanana-kit/pkg/intake"
	"github.com/shouni/nanobanana-kit/pkg/selection"
	"github.com/shouni/nanobanana-kit/pkg/session"
	"github.com/shouni/nanobanana-kit/pkg/store"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"golang.org/x/time/rate"
)

// Builder はワークフローの各コンポーネントを構築・共有する組み立て役です。
// 履歴・選択・セッションは1つの利用セッション内で共有されるため、
// Builder が単一インスタンスを保持します。
type Builder struct {
	cfg        config.Config
	kv         store.KV
	httpClient httpkit.ClientInterface
	aiClient   gemini.GenerativeModel
	reader     remoteio.InputReader

	apiClient *adapters.Client
	gate      *session.Gate
	hist      *history.Cache
	sel       *selection.Set
}

// NewBuilder は依存関係を注入して Builder を作成します。
// kv は必須です。aiClient が nil の場合、生成はHTTPバックエンド経由になり
// BaseURL が必須になります。httpClient と reader はURL取り込みを使わない
// 場合 nil を許容します。
func NewBuilder(cfg config.Config, kv store.KV, httpClient httpkit.ClientInterface, aiClient gemini.GenerativeModel, reader remoteio.InputReader) (*Builder, error) {
	if kv == nil {
		return nil, fmt.Errorf("kv (store.KV) は必須です")
	}
	if aiClient == nil && cfg.BaseURL == "" {
		return nil, fmt.Errorf("aiClient か BaseURL のいずれかが必要です")
	}

	sel := selection.New(cfg.SelectionLimit)
	hist, err := history.New(kv, cfg.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("履歴キャッシュの初期化に失敗しました: %w", err)
	}

	return &Builder{
		cfg:        cfg,
		kv:         kv,
		httpClient: httpClient,
		aiClient:   aiClient,
		reader:     reader,
		hist:       hist,
		sel:        sel,
	}, nil
}

// History は共有の履歴キャッシュを返します。
func (b *Builder) History() *history.Cache { return b.hist }

// Selection は共有の選択集合を返します。
func (b *Builder) Selection() *selection.Set { return b.sel }

// BuildSessionGate は認証アダプターつきの Session Gate を作成します。
func (b *Builder) BuildSessionGate() (*session.Gate, error) {
	if b.gate != nil {
		return b.gate, nil
	}

	client, err := b.buildAPIClient()
	if err != nil {
		return nil, err
	}
	auth, err := adapters.NewWebAuthenticator(client)
	if err != nil {
		return nil, fmt.Errorf("認証アダプターの初期化に失敗しました: %w", err)
	}

	gate, err := session.NewGate(b.kv, auth)
	if err != nil {
		return nil, fmt.Errorf("Session Gateの初期化に失敗しました: %w", err)
	}
	b.gate = gate
	return gate, nil
}

// BuildUploader は取り込みパイプラインを作成します。
// URL取得結果はTTL付きのインメモリキャッシュで保持します。
func (b *Builder) BuildUploader() (*intake.Uploader, error) {
	imgCache := cache.New(b.cfg.CacheTTL, 2*b.cfg.CacheTTL)
	return intake.NewUploader(b.hist, b.sel, b.httpClient, b.reader, imgCache, b.cfg.CacheTTL)
}

// BuildOrchestrator は状態機械を作成します。生成レーンは aiClient が
// あればGemini直結、なければHTTPバックエンド経由です。投稿は常に
// HTTPバックエンド経由です。
func (b *Builder) BuildOrchestrator() (*Orchestrator, error) {
	gate, err := b.BuildSessionGate()
	if err != nil {
		return nil, err
	}

	gen, err := b.buildImageGenerator()
	if err != nil {
		return nil, err
	}

	client, err := b.buildAPIClient()
	if err != nil {
		return nil, err
	}
	pub, err := adapters.NewWebPublisher(client)
	if err != nil {
		return nil, fmt.Errorf("投稿アダプターの初期化に失敗しました: %w", err)
	}

	return NewOrchestrator(gate, b.sel, gen, pub)
}

// buildImageGenerator は生成レーンを初期化します。
func (b *Builder) buildImageGenerator() (ImageGenerator, error) {
	if b.aiClient != nil {
		limiter := rate.NewLimiter(rate.Every(b.cfg.RateInterval), 1)
		gen, err := generator.NewGeminiGenerator(b.aiClient, b.cfg.ImageModel, limiter)
		if err != nil {
			return nil, fmt.Errorf("Geminiジェネレーターの初期化に失敗しました: %w", err)
		}
		return gen, nil
	}

	client, err := b.buildAPIClient()
	if err != nil {
		return nil, err
	}
	gen, err := adapters.NewWebGenerator(client)
	if err != nil {
		return nil, fmt.Errorf("生成アダプターの初期化に失敗しました: %w", err)
	}
	return gen, nil
}

// buildAPIClient はバックエンドAPI共通クライアントを共有します。
func (b *Builder) buildAPIClient() (*adapters.Client, error) {
	if b.apiClient != nil {
		return b.apiClient, nil
	}

	client, err := adapters.NewClient(adapters.Options{
		BaseURL: b.cfg.BaseURL,
		Timeout: b.cfg.HTTPTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("APIクライアントの初期化に失敗しました: %w", err)
	}
	b.apiClient = client
	return client, nil
}
