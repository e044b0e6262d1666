package metadata

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	http3 "github.com/quic-go/quic-go/http3"

	"github.com/pcodetools/pcode/internal/scope"
	"github.com/pcodetools/pcode/internal/types"
)

// RemoteProvider fetches a metadata document from a metadata service over
// HTTP/3 and serves it from memory. Inference never blocks on the
// network: Load must complete before the provider is handed to the
// pipeline, and a provider that was never loaded answers like
// NullProvider.
type RemoteProvider struct {
	url    string
	client *http.Client
	loaded *YAMLProvider
}

// RemoteOption configures a RemoteProvider.
type RemoteOption func(*RemoteProvider)

// WithHTTPClient replaces the default HTTP/3 client, mainly for tests.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(p *RemoteProvider) { p.client = c }
}

// WithTLSConfig sets the TLS configuration of the default HTTP/3 client.
func WithTLSConfig(cfg *tls.Config) RemoteOption {
	return func(p *RemoteProvider) {
		p.client = &http.Client{
			Transport: &http3.Transport{TLSClientConfig: cfg},
			Timeout:   10 * time.Second,
		}
	}
}

// NewRemoteProvider creates a provider that will fetch the YAML metadata
// document from url.
func NewRemoteProvider(url string, opts ...RemoteOption) *RemoteProvider {
	p := &RemoteProvider{
		url: url,
		client: &http.Client{
			Transport: &http3.Transport{},
			Timeout:   10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load fetches and parses the metadata document. It may be called again
// to refresh; the previous document stays in place if the fetch fails.
func (p *RemoteProvider) Load(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("build metadata request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch metadata: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read metadata response: %w", err)
	}
	loaded, err := ParseYAML(data)
	if err != nil {
		return err
	}
	p.loaded = loaded
	return nil
}

// Close releases the underlying HTTP/3 transport.
func (p *RemoteProvider) Close() error {
	if tr, ok := p.client.Transport.(*http3.Transport); ok {
		return tr.Close()
	}
	return nil
}

func (p *RemoteProvider) RecordFields(record string) ([]FieldInfo, bool) {
	if p.loaded == nil {
		return nil, false
	}
	return p.loaded.RecordFields(record)
}

func (p *RemoteProvider) AppClassExists(path string) bool {
	if p.loaded == nil {
		return false
	}
	return p.loaded.AppClassExists(path)
}

func (p *RemoteProvider) ResolveUndefinedVariable(name string, sc *scope.ScopeInfo) (types.TypeInfo, bool) {
	if p.loaded == nil {
		return types.Unknown(), false
	}
	return p.loaded.ResolveUndefinedVariable(name, sc)
}
