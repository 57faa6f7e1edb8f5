package adapters

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shouni/nanobanana-kit/pkg/domain"
	"github.com/shouni/nanobanana-kit/pkg/session"
)

type authRequest struct {
	Password string `json:"password"`
}

type authResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WebAuthenticator は認証サービスのHTTP実装です。
// クレデンシャル不一致（401 / success=false）とサービス障害を区別します。
type WebAuthenticator struct {
	client *Client
}

// NewWebAuthenticator は共通クライアントを注入して初期化します。
func NewWebAuthenticator(client *Client) (*WebAuthenticator, error) {
	if client == nil {
		return nil, fmt.Errorf("client (adapters.Client) is required")
	}
	return &WebAuthenticator{client: client}, nil
}

// Authenticate はクレデンシャルを送信し、受理されたトークンを返します。
func (a *WebAuthenticator) Authenticate(ctx context.Context, credential string) (string, error) {
	status, raw, err := a.client.postJSON(ctx, "/api/auth", "", authRequest{Password: credential})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAuthServiceUnavailable, err)
	}

	var resp authResponse
	if err := decodeInto(raw, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAuthServiceUnavailable, err)
	}

	switch {
	case status == http.StatusUnauthorized:
		return "", domain.ErrInvalidCredential
	case status >= http.StatusInternalServerError:
		return "", fmt.Errorf("%w: %s", domain.ErrAuthServiceUnavailable, resp.Error)
	case !resp.Success:
		return "", domain.ErrInvalidCredential
	}

	if resp.Token == "" {
		return "", fmt.Errorf("%w: トークンが含まれていません", domain.ErrAuthServiceUnavailable)
	}
	return resp.Token, nil
}

var _ session.Authenticator = (*WebAuthenticator)(nil)
