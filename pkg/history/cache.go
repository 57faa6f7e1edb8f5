package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/nanobanana-kit/pkg/domain"
	"github.com/shouni/nanobanana-kit/pkg/store"
	"github.com/shouni/nanobanana-kit/pkg/utils"

	"github.com/google/uuid"
)

const (
	// StorageKey は永続ストア上の履歴blobのキーです。
	StorageKey = "history"

	// DefaultLimit は保持する履歴の既定上限です。
	DefaultLimit = 10

	// FallbackLimit は容量超過時に永続化を試みる劣化上限です。
	FallbackLimit = 5
)

// record は永続化レイアウト {id, base64, createdAt} の1エントリです。
type record struct {
	ID        string `json:"id"`
	Base64    string `json:"base64"`
	CreatedAt int64  `json:"createdAt"`
}

// Cache は正規化済み画像の有界な履歴です。常に新しい順で、長さは
// limit を超えません。ミューテーションごとに永続ストアへ書き戻し、
// 容量超過時は truncate → clear の順で劣化します。永続化が失敗しても
// メモリ上の履歴は当該セッション中そのまま使えます。
type Cache struct {
	kv      store.KV
	limit   int
	entries []domain.NormalizedImage
}

// New は永続ストアから履歴を復元して Cache を初期化します。
// blob の欠落・破損は空の履歴として扱い、エラーにはしません。
func New(kv store.KV, limit int) (*Cache, error) {
	if kv == nil {
		return nil, fmt.Errorf("kv (store.KV) is required")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	c := &Cache{kv: kv, limit: limit}
	c.load()
	return c, nil
}

// load は永続blobを読み込んで復元します。起動時に一度だけ呼ばれます。
func (c *Cache) load() {
	raw, ok := c.kv.Get(StorageKey)
	if !ok {
		return
	}

	var records []record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		slog.Warn("履歴blobが破損しているため空の履歴で開始します", "error", err)
		return
	}

	entries := make([]domain.NormalizedImage, 0, len(records))
	for _, r := range records {
		data, err := utils.DecodeImage(r.Base64)
		if err != nil {
			slog.Warn("履歴エントリの復号に失敗したためスキップします", "id", r.ID, "error", err)
			continue
		}
		entries = append(entries, domain.NormalizedImage{
			ID:           r.ID,
			EncodedBytes: data,
			CreatedAt:    r.CreatedAt,
		})
	}
	if len(entries) > c.limit {
		entries = entries[:c.limit]
	}
	c.entries = entries
}

// Insert は正規化済みバイト列を先頭に追加し、上限まで切り詰めて永続化します。
// 永続化の成否にかかわらず、追加されたエントリのIDを返します。
func (c *Cache) Insert(encoded []byte) string {
	payload := make([]byte, len(encoded))
	copy(payload, encoded)

	img := domain.NormalizedImage{
		ID:           uuid.NewString(),
		EncodedBytes: payload,
		CreatedAt:    time.Now().UnixMilli(),
	}

	c.entries = append([]domain.NormalizedImage{img}, c.entries...)
	if len(c.entries) > c.limit {
		c.entries = c.entries[:c.limit]
	}

	c.persistWithDegradation()
	return img.ID
}

// Remove はIDで1件削除して永続化します。永続化エラーは返しますが、
// メモリ上の削除は取り消しません（ストレージとは結果整合）。
func (c *Cache) Remove(id string) error {
	filtered := c.entries[:0:0]
	for _, e := range c.entries {
		if e.ID != id {
			filtered = append(filtered, e)
		}
	}
	c.entries = filtered

	if err := c.persist(len(c.entries)); err != nil {
		return fmt.Errorf("履歴の書き戻しに失敗しました: %w", err)
	}
	return nil
}

// Get はIDでエントリを引きます。
func (c *Cache) Get(id string) (domain.NormalizedImage, bool) {
	for _, e := range c.entries {
		if e.ID == id {
			return e, true
		}
	}
	return domain.NormalizedImage{}, false
}

// Entries は現在の履歴（新しい順）のコピーを返します。
func (c *Cache) Entries() []domain.NormalizedImage {
	out := make([]domain.NormalizedImage, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len は現在の履歴件数を返します。
func (c *Cache) Len() int { return len(c.entries) }

// persistWithDegradation は順序付きの劣化戦略を順に試します:
// 全件 → FallbackLimit件 → 永続履歴の全消去。途中で書き込みが通れば
// そこで止まります。全消去は中途半端なblobを残さないための最終手段です。
func (c *Cache) persistWithDegradation() {
	strategies := []struct {
		name  string
		apply func() error
	}{
		{"full", func() error { return c.persist(len(c.entries)) }},
		{"truncated", func() error { return c.persist(FallbackLimit) }},
		{"clear", func() error { return c.kv.Remove(StorageKey) }},
	}

	for _, s := range strategies {
		err := s.apply()
		if err == nil {
			if s.name != "full" {
				slog.Warn("ストレージ容量超過のため履歴の保存深度を劣化させました", "strategy", s.name)
			}
			return
		}
		slog.Warn("履歴の永続化に失敗しました", "strategy", s.name, "error", err)
	}
}

// persist は先頭 n 件を永続化します。
func (c *Cache) persist(n int) error {
	if n > len(c.entries) {
		n = len(c.entries)
	}

	records := make([]record, 0, n)
	for _, e := range c.entries[:n] {
		records = append(records, record{
			ID:        e.ID,
			Base64:    utils.EncodeImage(e.EncodedBytes),
			CreatedAt: e.CreatedAt,
		})
	}

	blob, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return c.kv.Set(StorageKey, string(blob))
}
