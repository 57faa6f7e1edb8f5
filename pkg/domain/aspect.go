package domain

// アスペクト比の指定値。"auto" は Orchestrator が解決するセンチネルで、
// それ以外はそのまま下流へ送られるリテラル（"1:1", "4:5", "16:9" など）です。
const (
	AspectRatioAuto = "auto"

	// AspectRatioMatchFirst は「最初の参照画像の比率に合わせる」解決結果です。
	// auto かつ参照画像が1枚以上あるときのみ Orchestrator が設定します。
	AspectRatioMatchFirst = "match-first"

	// AspectRatioDefault は auto かつ参照画像なしのときの既定値です。
	AspectRatioDefault = "16:9"
)

// ResolveAspectRatio は "auto" センチネルを確定値へ解決します。
// リテラル比率はそのまま返します。
func ResolveAspectRatio(ratio string, referenceCount int) string {
	if ratio != AspectRatioAuto {
		return ratio
	}
	if referenceCount > 0 {
		return AspectRatioMatchFirst
	}
	return AspectRatioDefault
}
