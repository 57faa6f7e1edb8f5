package config

import (
	"time"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義
const (
	DefaultImageModel     = "gemini-3-pro-image-preview"
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultRateInterval   = 10 * time.Second
	DefaultCacheTTL       = 30 * time.Minute
	DefaultHistoryLimit   = 10
	DefaultSelectionLimit = 3

	// DefaultStoreCapacity は localStorage 相当の容量上限（5MB）です。
	DefaultStoreCapacity = 5 << 20
)

// Config はワークフロー全体の環境設定を保持する構造体です。
type Config struct {
	// --- Backend (HTTP API) Settings ---
	BaseURL string // 認証・生成・投稿APIのベースURL

	// --- Google AI (Gemini API) Settings ---
	GeminiAPIKey string
	ImageModel   string

	// --- Cache & Limits ---
	HistoryLimit   int
	SelectionLimit int
	StoreCapacity  int
	CacheTTL       time.Duration

	// --- Timeout & Rate ---
	HTTPTimeout  time.Duration
	RateInterval time.Duration
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	return Config{
		ImageModel:     DefaultImageModel,
		HistoryLimit:   DefaultHistoryLimit,
		SelectionLimit: DefaultSelectionLimit,
		StoreCapacity:  DefaultStoreCapacity,
		CacheTTL:       DefaultCacheTTL,
		HTTPTimeout:    DefaultHTTPTimeout,
		RateInterval:   DefaultRateInterval,
	}
}

// LoadConfig は環境変数から設定を読み込み、構造体を返します。
// 数値系の上限はデフォルトのまま、必要なら呼び出し側で上書きします。
func LoadConfig() Config {
	cfg := DefaultConfig()
	cfg.BaseURL = envutil.GetEnv("NANOBANANA_BASE_URL", "")
	cfg.GeminiAPIKey = envutil.GetEnv("GEMINI_API_KEY", "")
	cfg.ImageModel = envutil.GetEnv("IMAGE_GEMINI_MODEL", DefaultImageModel)
	return cfg
}
