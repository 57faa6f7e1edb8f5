package utils

import "encoding/base64"

// EncodeImage は画像バイト列を永続化・ワイヤ共通のbase64表現へ変換します。
func EncodeImage(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeImage はbase64表現を画像バイト列に戻します。
func DecodeImage(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
