package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
)

// Downloader copies the resource at locator into w.
type Downloader interface {
	Download(ctx context.Context, locator string, w io.Writer) error
}

// DownloaderFunc adapts a function to Downloader.
type DownloaderFunc func(ctx context.Context, locator string, w io.Writer) error

// Download calls f.
func (f DownloaderFunc) Download(ctx context.Context, locator string, w io.Writer) error {
	return f(ctx, locator, w)
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	Locator string
	Code    int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.Locator, e.Code, http.StatusText(e.Code))
}

// HTTPDownloader fetches http and https locators.
type HTTPDownloader struct {
	Client    *http.Client
	UserAgent string
}

// Download issues a GET request and streams the body into w.
func (d *HTTPDownloader) Download(ctx context.Context, locator string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return err
	}
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &StatusError{Locator: locator, Code: resp.StatusCode}
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

// FileDownloader serves file:// locators from the local filesystem.
type FileDownloader struct{}

// Download copies the referenced file into w.
func (FileDownloader) Download(ctx context.Context, locator string, w io.Writer) error {
	u, err := url.Parse(locator)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Open(u.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// Schemes dispatches to a Downloader by locator scheme.
type Schemes map[string]Downloader

// Download selects the downloader registered for the locator's scheme.
func (s Schemes) Download(ctx context.Context, locator string, w io.Writer) error {
	u, err := url.Parse(locator)
	if err != nil {
		return err
	}
	d, ok := s[u.Scheme]
	if !ok {
		return fmt.Errorf("%w: no downloader for scheme %q", ErrInvalidLocator, u.Scheme)
	}
	return d.Download(ctx, locator, w)
}

// DefaultDownloader handles http, https and file locators.
func DefaultDownloader(userAgent string) Schemes {
	h := &HTTPDownloader{UserAgent: userAgent}
	return Schemes{
		"http":  h,
		"https": h,
		"file":  FileDownloader{},
	}
}
