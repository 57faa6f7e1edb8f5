package adapters

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shouni/nanobanana-kit/pkg/domain"
	"github.com/shouni/nanobanana-kit/pkg/utils"
)

type generateRequest struct {
	Prompt      string   `json:"prompt"`
	InputImages []string `json:"inputImages,omitempty"`
	AspectRatio string   `json:"aspectRatio,omitempty"`
}

type generateResponse struct {
	Success     bool   `json:"success"`
	ImageBase64 string `json:"imageBase64,omitempty"`
	Error       string `json:"error,omitempty"`
}

// WebGenerator は生成サービスのHTTPバックエンド実装です。
// 参照画像をbase64で添付し、Bearer クレデンシャル必須で呼び出します。
type WebGenerator struct {
	client *Client
}

// NewWebGenerator は共通クライアントを注入して初期化します。
func NewWebGenerator(client *Client) (*WebGenerator, error) {
	if client == nil {
		return nil, fmt.Errorf("client (adapters.Client) is required")
	}
	return &WebGenerator{client: client}, nil
}

// GenerateImage は解決済みの WorkflowRequest をバックエンドへ送ります。
// 401 は ErrUnauthenticated として報告し、Orchestrator がセッションを
// クリアできるようにします。失敗メッセージは逐語で保持されます。
func (g *WebGenerator) GenerateImage(ctx context.Context, req domain.WorkflowRequest) (*domain.GeneratedResult, error) {
	images := make([]string, 0, len(req.Images))
	for _, data := range req.Images {
		images = append(images, utils.EncodeImage(data))
	}

	payload := generateRequest{
		Prompt:      req.Prompt,
		InputImages: images,
		AspectRatio: wireAspectRatio(req.AspectRatio),
	}

	status, raw, err := g.client.postJSON(ctx, "/api/generate", req.Token, payload)
	if err != nil {
		return nil, &domain.GenerationError{Message: err.Error(), Err: err}
	}
	if status == http.StatusUnauthorized {
		return nil, domain.ErrUnauthenticated
	}

	var resp generateResponse
	if err := decodeInto(raw, &resp); err != nil {
		return nil, &domain.GenerationError{Message: err.Error(), Err: err}
	}
	if !resp.Success {
		return nil, &domain.GenerationError{Message: resp.Error}
	}
	if resp.ImageBase64 == "" {
		return nil, domain.ErrNoImageProduced
	}

	data, err := utils.DecodeImage(resp.ImageBase64)
	if err != nil {
		return nil, &domain.GenerationError{Message: "応答画像の復号に失敗しました", Err: err}
	}

	return &domain.GeneratedResult{
		ImageBytes: data,
		MimeType:   http.DetectContentType(data),
	}, nil
}

// wireAspectRatio は解決済みディレクティブをワイヤ表現へ戻します。
// バックエンドは auto と参照画像の組で「最初の画像に合わせる」を導出する
// ため、match-first はワイヤ上では auto として送ります。
func wireAspectRatio(resolved string) string {
	if resolved == domain.AspectRatioMatchFirst {
		return domain.AspectRatioAuto
	}
	return resolved
}
