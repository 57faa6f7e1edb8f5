package store

import "errors"

// ErrQuotaExceeded は容量上限により書き込みが拒否されたことを示します。
// History Cache はこれを受けて保存深度を段階的に劣化させます。
var ErrQuotaExceeded = errors.New("ストレージ容量の上限を超えています")

// KV はブラウザの localStorage に相当する同期キーバリューストアです。
// 文字列blobの get/set/remove のみを提供し、容量上限により Set が
// 失敗することがあります。実体はプレゼンテーション層から注入されます。
type KV interface {
	// Get はキーに紐づく値を返します。存在しない場合は ok=false です。
	Get(key string) (value string, ok bool)
	// Set は値を書き込みます。容量上限では ErrQuotaExceeded を返します。
	Set(key, value string) error
	// Remove はキーを削除します。存在しないキーの削除はエラーではありません。
	Remove(key string) error
}
