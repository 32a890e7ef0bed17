package picture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/picstash/service/internal/apperr"
)

// Source is a polymorphic upload input: a direct binary upload or a remote
// URL. The uploader owns the temp artifact Materialize writes into and
// removes it on every exit path.
type Source interface {
	// Validate rejects sources that must not be uploaded. Failures carry
	// apperr codes.
	Validate(ctx context.Context) error
	// OriginalName returns the claimed or derived original filename.
	OriginalName() string
	// Materialize writes the source's bytes into dst.
	Materialize(ctx context.Context, dst *os.File) error
}

var allowedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"webp": true,
}

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// BinarySource is raw uploaded bytes with a claimed filename.
type BinarySource struct {
	data     []byte
	filename string
	maxBytes int64
}

// NewBinarySource creates a binary source limited to maxBytes.
func NewBinarySource(data []byte, filename string, maxBytes int64) *BinarySource {
	return &BinarySource{data: data, filename: filename, maxBytes: maxBytes}
}

// Validate rejects oversized payloads and disallowed extensions.
func (s *BinarySource) Validate(ctx context.Context) error {
	if len(s.data) == 0 {
		return apperr.Params("uploaded file is empty")
	}
	if int64(len(s.data)) > s.maxBytes {
		return apperr.Params(fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(s.filename), "."))
	if !allowedExtensions[ext] {
		return apperr.Params("unsupported file type")
	}
	return nil
}

// OriginalName returns the claimed filename.
func (s *BinarySource) OriginalName() string {
	return path.Base(s.filename)
}

// Materialize copies the payload into dst.
func (s *BinarySource) Materialize(ctx context.Context, dst *os.File) error {
	if _, err := dst.Write(s.data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	return nil
}

// URLSource is a remote image addressed by URL.
type URLSource struct {
	rawURL   string
	maxBytes int64
	client   *http.Client
}

var defaultHTTPClient = &http.Client{Timeout: 30 * time.Second}

// NewURLSource creates a URL source limited to maxBytes. A nil client falls
// back to a shared 30s-timeout client.
func NewURLSource(rawURL string, maxBytes int64, client *http.Client) *URLSource {
	if client == nil {
		client = defaultHTTPClient
	}
	return &URLSource{rawURL: rawURL, maxBytes: maxBytes, client: client}
}

// Validate checks URL shape, then probes the target with a HEAD request. A
// probe that fails to respond passes silently: some servers refuse HEAD, and
// that is not evidence the file is invalid. When the probe responds, its
// declared content type and length are checked if present.
func (s *URLSource) Validate(ctx context.Context) error {
	if strings.TrimSpace(s.rawURL) == "" {
		return apperr.Params("file url must not be empty")
	}
	u, err := url.Parse(s.rawURL)
	if err != nil {
		return apperr.Params("malformed file url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return apperr.Params("only http and https urls are supported")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.rawURL, nil)
	if err != nil {
		return apperr.Params("malformed file url")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if !allowedContentTypes[strings.ToLower(ct)] {
			return apperr.Params("unsupported content type")
		}
	}
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		n, err := strconv.ParseInt(cl, 10, 64)
		if err != nil {
			return apperr.Params("malformed content-length header")
		}
		if n > s.maxBytes {
			return apperr.Params(fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
		}
	}
	return nil
}

// OriginalName derives a filename from the URL's path tail.
func (s *URLSource) OriginalName() string {
	u, err := url.Parse(s.rawURL)
	if err != nil {
		return path.Base(s.rawURL)
	}
	return path.Base(u.Path)
}

// Materialize downloads the URL body into dst.
func (s *URLSource) Materialize(ctx context.Context, dst *os.File) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.rawURL, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", s.rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %d", s.rawURL, resp.StatusCode)
	}
	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	return nil
}
