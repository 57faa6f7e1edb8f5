package selection

import "bytes"

// DefaultLimit は1回の生成リクエストに添付できる参照画像の既定上限です。
const DefaultLimit = 3

// Set は現在の生成リクエストに添付する画像ペイロードの順序付き集合です。
// 上限つき・値での重複排除つきで、リクエスト準備の間だけ生きる一時的な
// 状態です。永続化されません。
type Set struct {
	limit    int
	payloads [][]byte
}

// New は上限 limit の空の Set を返します。limit が0以下なら既定値を使います。
func New(limit int) *Set {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Set{limit: limit}
}

// Add はペイロードを末尾に追加します。満杯のとき、または同一内容が
// すでに存在するときは何もせず false を返します。
func (s *Set) Add(payload []byte) bool {
	if len(s.payloads) >= s.limit {
		return false
	}
	for _, p := range s.payloads {
		if bytes.Equal(p, payload) {
			return false
		}
	}

	cp := make([]byte, len(payload))
	copy(cp, payload)
	s.payloads = append(s.payloads, cp)
	return true
}

// RemoveAt は指定位置のエントリを取り除きます。範囲外は何もしません。
func (s *Set) RemoveAt(index int) {
	if index < 0 || index >= len(s.payloads) {
		return
	}
	s.payloads = append(s.payloads[:index], s.payloads[index+1:]...)
}

// Clear は集合を空にします。
func (s *Set) Clear() {
	s.payloads = nil
}

// Payloads は現在の内容のスナップショット（各ペイロードのコピー）を返します。
// 呼び出し後に Set が変更されてもスナップショットは影響を受けません。
func (s *Set) Payloads() [][]byte {
	out := make([][]byte, len(s.payloads))
	for i, p := range s.payloads {
		cp := make([]byte, len(p))
		copy(cp, p)
		out[i] = cp
	}
	return out
}

// Len は現在の件数を返します。
func (s *Set) Len() int { return len(s.payloads) }
