package intake

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"
)

// --- Mocks ---

type mockHTTPClient struct {
	data    []byte
	err     error
	fetched int
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.fetched++
	return m.data, m.err
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) { return nil, m.err }

func (m *mockHTTPClient) DoRequest(req *http.Request) ([]byte, error) { return m.data, m.err }

func (m *mockHTTPClient) FetchAndDecodeJSON(ctx context.Context, url string, v any) error {
	return m.err
}

func (m *mockHTTPClient) PostJSONAndFetchBytes(ctx context.Context, url string, data any) ([]byte, error) {
	return m.data, m.err
}

func (m *mockHTTPClient) PostRawBodyAndFetchBytes(ctx context.Context, url string, body []byte, contentType string) ([]byte, error) {
	return m.data, m.err
}

func (m *mockHTTPClient) IsSafeURL(urlStr string) (bool, error) { return true, nil }

func (m *mockHTTPClient) IsSecureServiceURL(serviceURL string) bool { return true }

type mockReader struct {
	data   []byte
	err    error
	opened int
}

type nopReadCloser struct{ io.Reader }

func (nopReadCloser) Close() error { return nil }

func (m *mockReader) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	m.opened++
	if m.err != nil {
		return nil, m.err
	}
	return nopReadCloser{Reader: bytes.NewReader(m.data)}, nil
}

func (m *mockReader) List(ctx context.Context, uri string, fn func(string) error) error {
	return nil
}

type mockCache struct {
	data map[string]any
}

func (m *mockCache) Get(key string) (any, bool) {
	val, ok := m.data[key]
	return val, ok
}

func (m *mockCache) Set(key string, value any, d time.Duration) {
	m.data[key] = value
}
