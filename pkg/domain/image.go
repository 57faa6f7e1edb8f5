package domain

// NormalizedImage は正規化済み画像の不変スナップショットです。
// Image Normalizer が生成し、History Cache が所有します。
type NormalizedImage struct {
	ID           string
	EncodedBytes []byte
	CreatedAt    int64 // Unixミリ秒
}

// WorkflowRequest は1回の生成試行ごとに組み立てる要求です。
// Selection のスナップショットを保持し、完了後は保持されません。
type WorkflowRequest struct {
	Prompt      string
	Images      [][]byte // 参照画像（正規化済みペイロードのコピー、0..M枚）
	AspectRatio string   // Orchestrator が解決済みのディレクティブ
	Token       string   // Bearer クレデンシャル（未認証なら空）
}

// GeneratedResult は生成サービスから受け取った画像です。
// 次の生成が成功するか、ユーザーが破棄するまで Orchestrator が保持します。
type GeneratedResult struct {
	ImageBytes []byte
	MimeType   string
}

// PublishResult は投稿サービスが返す公開識別子です。
type PublishResult struct {
	PublicationID string
}
