// Package objectstorage persists artifacts to an HTTP object store (S3
// compatible gateways, pre-signed bucket prefixes, plain WebDAV servers) by
// issuing one PUT per artifact format.
package objectstorage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/specialistvlad/stepflow/internal/ctxlog"
	"github.com/specialistvlad/stepflow/internal/storage"
	"github.com/specialistvlad/stepflow/internal/table"
)

// defaultClient is shared by every Storage without its own client so TCP
// connections are reused across uploads.
var defaultClient = &http.Client{}

// Storage uploads artifacts to `<BaseURL>/<name>.<ext>`.
type Storage struct {
	BaseURL string
	Headers map[string]string
	Client  *http.Client
}

// New creates an object storage rooted at baseURL.
func New(baseURL string, headers map[string]string) (*Storage, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base_url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base_url %q: scheme must be http or https", baseURL)
	}
	return &Storage{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Headers: headers,
	}, nil
}

// Write uploads t once per requested format. An existing object with the same
// key is replaced by the PUT.
func (s *Storage) Write(ctx context.Context, t *table.Table, name string, formats []storage.Format) error {
	for _, f := range formats {
		if err := s.upload(ctx, t, name, f); err != nil {
			return storage.WriteError(name, f, err)
		}
	}
	return nil
}

// ObjectURL returns the URL an artifact format is uploaded to.
func (s *Storage) ObjectURL(name string, f storage.Format) string {
	return s.BaseURL + "/" + url.PathEscape(storage.FileName(name, f))
}

func (s *Storage) upload(ctx context.Context, t *table.Table, name string, f storage.Format) error {
	logger := ctxlog.FromContext(ctx).With("artifact", name, "format", f)

	var body bytes.Buffer
	if err := storage.Encode(&body, t, f); err != nil {
		return err
	}
	size := body.Len()

	target := s.ObjectURL(name, f)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, &body)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", f.ContentType())
	req.ContentLength = int64(size)
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	logger.Debug("Uploading artifact.", "url", target, "size", size)

	client := s.Client
	if client == nil {
		client = defaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute upload request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upload failed with status: %s", resp.Status)
	}

	logger.Debug("Artifact uploaded.", "status", resp.Status)
	return nil
}
