package materializer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/hellenic-development/supernova-cli/pkg/exporter"
)

// resolve returns the bytes an emitted file should contain.
func (m *Materializer) resolve(ctx context.Context, f exporter.EmittedFile) ([]byte, error) {
	switch f.Kind {
	case exporter.KindInline:
		return f.Content, nil
	case exporter.KindCopyLocal:
		return m.readLocal(f.Source)
	case exporter.KindCopyRemote:
		return m.download(ctx, f.Source)
	}
	return nil, fmt.Errorf("%w: %s has unknown type %q", ErrDestinationInvalid, f.Path, f.Kind)
}

func (m *Materializer) readLocal(source string) ([]byte, error) {
	p := filepath.FromSlash(source)
	if !filepath.IsAbs(p) && m.sourceRoot != "" {
		p = filepath.Join(m.sourceRoot, p)
	}

	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceReadFailed, source, err)
	}
	return b, nil
}

// download fetches rawURL into memory. Only http and https are accepted; any
// transport error or non-2xx status fails the run.
func (m *Materializer) download(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: unsupported URL %q", ErrRemoteFetchFailed, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRemoteFetchFailed, rawURL, err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRemoteFetchFailed, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: unexpected status %d", ErrRemoteFetchFailed, rawURL, resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRemoteFetchFailed, rawURL, err)
	}
	return b, nil
}
