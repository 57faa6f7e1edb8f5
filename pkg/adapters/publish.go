package adapters

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shouni/nanobanana-kit/pkg/domain"
	"github.com/shouni/nanobanana-kit/pkg/utils"
)

type publishRequest struct {
	ImageBase64 string `json:"imageBase64"`
	Text        string `json:"text"`
}

type publishResponse struct {
	Success bool   `json:"success"`
	TweetID string `json:"tweetId,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WebPublisher は投稿サービスのHTTPバックエンド実装です。
// 画像とキャプションを送信し、公開識別子を受け取ります。
type WebPublisher struct {
	client *Client
}

// NewWebPublisher は共通クライアントを注入して初期化します。
func NewWebPublisher(client *Client) (*WebPublisher, error) {
	if client == nil {
		return nil, fmt.Errorf("client (adapters.Client) is required")
	}
	return &WebPublisher{client: client}, nil
}

// Publish は生成結果とキャプションを投稿します。
// 401 は ErrUnauthenticated、その他の失敗は PublishError として返します。
func (p *WebPublisher) Publish(ctx context.Context, image []byte, caption, token string) (*domain.PublishResult, error) {
	payload := publishRequest{
		ImageBase64: utils.EncodeImage(image),
		Text:        caption,
	}

	status, raw, err := p.client.postJSON(ctx, "/api/post", token, payload)
	if err != nil {
		return nil, &domain.PublishError{Message: err.Error(), Err: err}
	}
	if status == http.StatusUnauthorized {
		return nil, domain.ErrUnauthenticated
	}

	var resp publishResponse
	if err := decodeInto(raw, &resp); err != nil {
		return nil, &domain.PublishError{Message: err.Error(), Err: err}
	}
	if !resp.Success {
		return nil, &domain.PublishError{Message: resp.Error}
	}
	if resp.TweetID == "" {
		return nil, &domain.PublishError{Message: "公開識別子が含まれていません"}
	}

	return &domain.PublishResult{PublicationID: resp.TweetID}, nil
}
