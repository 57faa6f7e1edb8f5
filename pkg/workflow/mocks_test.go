package workflow

import (
	"context"

	"github.com/shouni/nanobanana-kit/pkg/domain"
)

// mockGenerator は ImageGenerator のテストダブルです。
type mockGenerator struct {
	generateFunc func(ctx context.Context, req domain.WorkflowRequest) (*domain.GeneratedResult, error)
	calls        int
	lastReq      domain.WorkflowRequest
}

func (m *mockGenerator) GenerateImage(ctx context.Context, req domain.WorkflowRequest) (*domain.GeneratedResult, error) {
	m.calls++
	m.lastReq = req
	if m.generateFunc != nil {
		return m.generateFunc(ctx, req)
	}
	return &domain.GeneratedResult{ImageBytes: []byte("generated"), MimeType: "image/png"}, nil
}

// blockingGenerator は呼び出し中であることを通知し、解放されるまで
// 返らないジェネレーターです。進行中の多重トリガー検証に使います。
type blockingGenerator struct {
	started chan struct{}
	release chan struct{}
	result  *domain.GeneratedResult
	err     error
}

func newBlockingGenerator(result *domain.GeneratedResult, err error) *blockingGenerator {
	return &blockingGenerator{
		started: make(chan struct{}),
		release: make(chan struct{}),
		result:  result,
		err:     err,
	}
}

func (b *blockingGenerator) GenerateImage(ctx context.Context, req domain.WorkflowRequest) (*domain.GeneratedResult, error) {
	close(b.started)
	<-b.release
	return b.result, b.err
}

// mockPublisher は Publisher のテストダブルです。
type mockPublisher struct {
	publishFunc func(ctx context.Context, image []byte, caption, token string) (*domain.PublishResult, error)
	calls       int
	lastImage   []byte
	lastCaption string
	lastToken   string
}

func (m *mockPublisher) Publish(ctx context.Context, image []byte, caption, token string) (*domain.PublishResult, error) {
	m.calls++
	m.lastImage = image
	m.lastCaption = caption
	m.lastToken = token
	if m.publishFunc != nil {
		return m.publishFunc(ctx, image, caption, token)
	}
	return &domain.PublishResult{PublicationID: "pub-1"}, nil
}

// mockAuthenticator は session.Authenticator のテストダブルです。
type mockAuthenticator struct {
	token string
	err   error
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, credential string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.token, nil
}
