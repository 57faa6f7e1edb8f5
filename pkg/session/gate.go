package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/nanobanana-kit/pkg/store"
)

// StorageKey は永続ストア上のトークンのキーです。
const StorageKey = "authToken"

// Authenticator は認証サービスとのやり取りを抽象化するインターフェースです。
// クレデンシャル不一致は domain.ErrInvalidCredential、サービス障害は
// domain.ErrAuthServiceUnavailable を（ラップして）返します。
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (token string, err error)
}

// Gate は現在の認証トークンを保持する Session Gate です。
// トークンの有効性はローカルでは検証せず、リモートサービスの受理・拒否
// のみで決まります（楽観的復元）。
type Gate struct {
	kv    store.KV
	auth  Authenticator
	token string
}

// NewGate は永続トークンがあればそれを復元して Gate を初期化します。
func NewGate(kv store.KV, auth Authenticator) (*Gate, error) {
	if kv == nil {
		return nil, fmt.Errorf("kv (store.KV) is required")
	}
	if auth == nil {
		return nil, fmt.Errorf("auth (Authenticator) is required")
	}

	g := &Gate{kv: kv, auth: auth}
	if token, ok := kv.Get(StorageKey); ok && token != "" {
		g.token = token
	}
	return g, nil
}

// Login は認証サービスへ委譲し、受理されたトークンを保持・永続化します。
// 拒否・障害時は Session を変更せずエラーをそのまま返します。
func (g *Gate) Login(ctx context.Context, credential string) error {
	token, err := g.auth.Authenticate(ctx, credential)
	if err != nil {
		return err
	}

	g.token = token
	if err := g.kv.Set(StorageKey, token); err != nil {
		// トークン自体は当該セッションで有効なので、永続化失敗は警告に留める
		slog.Warn("トークンの永続化に失敗しました。リロード後は再ログインが必要です", "error", err)
	}
	return nil
}

// Logout は Session と永続コピーを無条件にクリアします。
// ストア書き込みが失敗してもメモリ上の状態は必ずクリアされます。
func (g *Gate) Logout() {
	g.token = ""
	if err := g.kv.Remove(StorageKey); err != nil {
		slog.Warn("永続トークンの削除に失敗しました", "error", err)
	}
}

// Invalidate はリモート呼び出しが認証失敗を報告したときの遷移です。
// 挙動は Logout と同じで、未認証状態へ戻します。
func (g *Gate) Invalidate() {
	slog.Info("リモートサービスが認証を拒否したためセッションをクリアします")
	g.Logout()
}

// CurrentToken は現在のトークンを返します。未認証なら ok=false です。
func (g *Gate) CurrentToken() (string, bool) {
	return g.token, g.token != ""
}

// Authenticated は認証済みかどうかの純粋な読み取りです。
func (g *Gate) Authenticated() bool {
	return g.token != ""
}
