package intake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/nanobanana-kit/pkg/domain"
	"github.com/shouni/nanobanana-kit/pkg/history"
	"github.com/shouni/nanobanana-kit/pkg/imgutil"
	"github.com/shouni/nanobanana-kit/pkg/selection"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"golang.org/x/sync/errgroup"
)

const (
	// HistoryBound は履歴保存用コピーの長辺上限です。
	HistoryBound = 400
	// SelectionBound は生成入力用コピーの長辺上限です。
	SelectionBound = 1200
)

// ImageCacher は、URL取得結果をキャッシュするためのインターフェースです。
type ImageCacher interface {
	Get(key string) (any, bool)
	Set(key string, value any, d time.Duration)
}

// Uploader は生画像を履歴用・生成入力用の2系統へ正規化する取り込み口です。
// 1回のアップロードにつき正規化を2回、互いに独立に実行します。
type Uploader struct {
	history    *history.Cache
	selection  *selection.Set
	httpClient httpkit.ClientInterface
	reader     remoteio.InputReader
	cache      ImageCacher
	cacheTTL   time.Duration
	quality    int
}

// UploadResult は1回の取り込みの結果です。
type UploadResult struct {
	HistoryID      string
	SelectionAdded bool
	// Degraded はデコード失敗により生バイトのまま取り込んだことを示します。
	Degraded bool
}

// NewUploader は依存関係を注入して Uploader を初期化します。
// httpClient と reader はURL・URI取り込みを使わない場合 nil を許容します。
// cache も nil を許容します（キャッシュなし動作）。
func NewUploader(hist *history.Cache, sel *selection.Set, httpClient httpkit.ClientInterface, reader remoteio.InputReader, cache ImageCacher, cacheTTL time.Duration) (*Uploader, error) {
	if hist == nil {
		return nil, fmt.Errorf("hist (history.Cache) is required")
	}
	if sel == nil {
		return nil, fmt.Errorf("sel (selection.Set) is required")
	}

	return &Uploader{
		history:    hist,
		selection:  sel,
		httpClient: httpClient,
		reader:     reader,
		cache:      cache,
		cacheTTL:   cacheTTL,
		quality:    imgutil.DefaultQuality,
	}, nil
}

// Upload は生バイトを2系統へ正規化し、小さい方を履歴へ、大きい方を
// 現在の選択へ入れます。デコードできない入力は生バイトのまま両系統へ
// 取り込む劣化モードで継続し、アップロード自体は失敗させません。
func (u *Uploader) Upload(ctx context.Context, raw []byte) (*UploadResult, error) {
	if len(raw) == 0 {
		return nil, &domain.ValidationError{Field: "image", Reason: "画像データが空です"}
	}

	var small, large []byte
	eg, _ := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		small, err = imgutil.Normalize(raw, HistoryBound, u.quality)
		return err
	})
	eg.Go(func() error {
		var err error
		large, err = imgutil.Normalize(raw, SelectionBound, u.quality)
		return err
	})

	degraded := false
	if err := eg.Wait(); err != nil {
		if !errors.Is(err, domain.ErrDecode) {
			return nil, err
		}
		// 劣化モード: 生バイトをそのまま使う。サイズ上限は適用しない。
		slog.Warn("画像をデコードできないため生バイトのまま取り込みます", "bytes", len(raw), "error", err)
		small, large = raw, raw
		degraded = true
	}

	id := u.history.Insert(small)
	added := u.selection.Add(large)

	return &UploadResult{
		HistoryID:      id,
		SelectionAdded: added,
		Degraded:       degraded,
	}, nil
}

// AddFromURI はURLまたは gs:// URI から画像を取得して取り込みます。
// 取得結果はTTL付きでキャッシュされます。
func (u *Uploader) AddFromURI(ctx context.Context, rawURI string) (*UploadResult, error) {
	data, err := u.fetchImageData(ctx, rawURI)
	if err != nil {
		return nil, fmt.Errorf("参照画像の取得に失敗しました: %w", err)
	}
	return u.Upload(ctx, data)
}

// AddFromHistory は履歴エントリのペイロードを現在の選択へコピーします。
// 同一ペイロードの再選択は重複にならず no-op です。
func (u *Uploader) AddFromHistory(id string) bool {
	entry, ok := u.history.Get(id)
	if !ok {
		return false
	}
	return u.selection.Add(entry.EncodedBytes)
}

// fetchImageData は gs:// を reader、http(s) を httpClient で取得します。
func (u *Uploader) fetchImageData(ctx context.Context, rawURI string) ([]byte, error) {
	if u.cache != nil {
		if val, ok := u.cache.Get(rawURI); ok {
			if data, ok := val.([]byte); ok {
				return data, nil
			}
		}
	}

	var data []byte
	switch {
	case strings.HasPrefix(rawURI, "gs://"):
		if u.reader == nil {
			return nil, fmt.Errorf("gs:// の読み込みには reader が必要です")
		}
		rc, err := u.reader.Open(ctx, rawURI)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		data, err = io.ReadAll(rc)
		if err != nil {
			return nil, err
		}
	default:
		if u.httpClient == nil {
			return nil, fmt.Errorf("URL の読み込みには httpClient が必要です")
		}
		var err error
		data, err = u.httpClient.FetchBytes(ctx, rawURI)
		if err != nil {
			return nil, err
		}
	}

	if u.cache != nil {
		u.cache.Set(rawURI, data, u.cacheTTL)
	}
	return data, nil
}
