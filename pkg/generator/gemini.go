package generator

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/shouni/nanobanana-kit/pkg/domain"
	"github.com/shouni/nanobanana-kit/pkg/imgutil"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const (
	// DefaultModel は画像生成に使う既定のGeminiモデルです。
	DefaultModel = "gemini-3-pro-image-preview"

	UseImageCompression     = true
	ImageCompressionQuality = 75
)

// watermarkGuard はすべての生成プロンプトに付与する透かし抑止の指示です。
const watermarkGuard = "Do NOT add any watermarks, logos, or branding to the image. No visible watermarks in any corner."

// GeminiGenerator は生成サービスコラボレーターのGemini直結実装です。
// Orchestrator が解決済みの WorkflowRequest を受け取り、参照画像を
// インラインパーツとして添付して1枚の画像を生成します。
type GeminiGenerator struct {
	aiClient gemini.GenerativeModel
	model    string
	limiter  *rate.Limiter
}

// NewGeminiGenerator は依存関係を注入して GeminiGenerator を初期化します。
// limiter は nil を許容します（レート制限なし動作）。
func NewGeminiGenerator(aiClient gemini.GenerativeModel, model string, limiter *rate.Limiter) (*GeminiGenerator, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient (gemini.GenerativeModel) is required")
	}
	if model == "" {
		model = DefaultModel
	}

	return &GeminiGenerator{
		aiClient: aiClient,
		model:    model,
		limiter:  limiter,
	}, nil
}

// GenerateImage は参照画像パーツとプロンプトを組み立てて生成を実行します。
// トランスポート成功でも画像パーツを含まない応答は ErrNoImageProduced です。
func (g *GeminiGenerator) GenerateImage(ctx context.Context, req domain.WorkflowRequest) (*domain.GeneratedResult, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	parts := g.buildParts(req)

	opts := gemini.GenerateOptions{}
	if req.AspectRatio != domain.AspectRatioMatchFirst {
		opts.AspectRatio = req.AspectRatio
	}

	resp, err := g.aiClient.GenerateWithParts(ctx, g.model, parts, opts)
	if err != nil {
		return nil, fmt.Errorf("Gemini画像生成エラー: %w", err)
	}

	return parseToResult(resp)
}

// buildParts は参照画像をインラインパーツに変換し、末尾にプロンプトの
// テキストパーツを置きます。参照画像がない場合はテキストのみです。
func (g *GeminiGenerator) buildParts(req domain.WorkflowRequest) []*genai.Part {
	parts := make([]*genai.Part, 0, len(req.Images)+1)
	for _, data := range req.Images {
		if part := toPart(data); part != nil {
			parts = append(parts, part)
		}
	}
	parts = append(parts, &genai.Part{Text: buildPrompt(req.Prompt, req.AspectRatio, len(parts) > 0)})
	return parts
}

// buildPrompt はアスペクト比ディレクティブと透かし抑止をプロンプトへ合成します。
func buildPrompt(prompt, aspectRatio string, hasReferences bool) string {
	instruction := aspectInstruction(aspectRatio, hasReferences)
	if hasReferences {
		return fmt.Sprintf("%s. %s %s", prompt, instruction, watermarkGuard)
	}
	return fmt.Sprintf("Generate an image: %s. %s %s", prompt, instruction, watermarkGuard)
}

// aspectInstruction は解決済みディレクティブをモデルへの英文指示に変換します。
func aspectInstruction(aspectRatio string, hasReferences bool) string {
	if aspectRatio == domain.AspectRatioMatchFirst && hasReferences {
		return "Match the aspect ratio of the first input image."
	}
	if aspectRatio == "" || aspectRatio == domain.AspectRatioMatchFirst {
		aspectRatio = domain.AspectRatioDefault
	}
	return fmt.Sprintf("Aspect ratio: %s.", aspectRatio)
}

// toPart はバイト列を genai.Part (InlineData) に変換します。
// 画像でない場合でも劣化モードの生バイトを尊重し、JPEG圧縮を試みてから
// 判定します。圧縮も判定も通らないデータは添付しません。
func toPart(data []byte) *genai.Part {
	finalData := data
	if UseImageCompression {
		if compressed, err := imgutil.CompressToJPEG(data, ImageCompressionQuality); err == nil {
			finalData = compressed
		}
	}

	mimeType := http.DetectContentType(finalData)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil
	}
	return &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: finalData}}
}

// parseToResult は応答から最初の画像パーツを抽出します。
func parseToResult(resp *gemini.Response) (*domain.GeneratedResult, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return nil, &domain.GenerationError{Message: "Geminiからの有効な応答がありませんでした"}
	}

	candidate := resp.RawResponse.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 && strings.HasPrefix(part.InlineData.MIMEType, "image/") {
				return &domain.GeneratedResult{
					ImageBytes: part.InlineData.Data,
					MimeType:   part.InlineData.MIMEType,
				}, nil
			}
		}
	}

	// 安全フィルター等によるブロックの確認
	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return nil, &domain.GenerationError{
			Message: fmt.Sprintf("画像生成が異常終了しました (FinishReason: %s)", candidate.FinishReason),
		}
	}

	return nil, domain.ErrNoImageProduced
}
