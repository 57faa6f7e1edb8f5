package domain

import (
	"errors"
	"fmt"
)

// エラー分類。ローカル検証と劣化可能なエラーは呼び出し側で吸収し、
// リモート起因のエラーは必ず表示可能な形で呼び出し側へ返します。
var (
	// ErrBusy は生成・投稿の多重トリガーを拒否するシグナルです。
	// 進行中の呼び出し自体の失敗ではありません。
	ErrBusy = errors.New("別のリクエストが進行中です")

	// ErrUnauthenticated はリモートサービスがクレデンシャルを拒否したことを示します。
	// Orchestrator はこれを受けて Session Gate を未認証状態へ戻します。
	ErrUnauthenticated = errors.New("認証されていません")

	// ErrInvalidCredential はログイン時のクレデンシャル不一致です。
	ErrInvalidCredential = errors.New("クレデンシャルが一致しません")

	// ErrAuthServiceUnavailable は認証サービス自体の到達不能・障害です。
	// ErrInvalidCredential と区別され、Session は変更されません。
	ErrAuthServiceUnavailable = errors.New("認証サービスに接続できません")

	// ErrNoImageProduced はトランスポート成功だが画像が含まれない応答です。
	ErrNoImageProduced = errors.New("画像が生成されませんでした")

	// ErrDecode は入力画像をデコードできなかったことを示します。
	// 呼び出し側は生バイトへの劣化モードで継続します。
	ErrDecode = errors.New("画像をデコードできませんでした")
)

// ValidationError は空プロンプト・空キャプション等のローカル検証エラーです。
// 下流へは一切送信されません。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("入力検証エラー (%s): %s", e.Field, e.Reason)
}

// GenerationError はリモートメッセージを逐語で保持する生成失敗です。
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("画像生成エラー: %s", e.Message)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// PublishError は投稿失敗です。GeneratedResult は保持されたままなので、
// 再生成せずに再投稿できます。
type PublishError struct {
	Message string
	Err     error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("投稿エラー: %s", e.Message)
}

func (e *PublishError) Unwrap() error { return e.Err }
