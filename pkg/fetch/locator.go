package fetch

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// ErrInvalidLocator is returned for locators that cannot be downloaded.
var ErrInvalidLocator = errors.New("invalid locator")

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// Canonicalize normalizes locator so that equivalent spellings share one
// download: the scheme and host are lower-cased, default ports and fragments
// are dropped, and bare filesystem paths become absolute file:// locators.
func Canonicalize(locator string) (string, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidLocator)
	}
	if !strings.Contains(locator, "://") {
		abs, err := filepath.Abs(locator)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrInvalidLocator, locator, err)
		}
		return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
	}

	u, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidLocator, err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Fragment = ""
	u.RawFragment = ""

	switch u.Scheme {
	case "http", "https":
		host := strings.ToLower(u.Hostname())
		if host == "" {
			return "", fmt.Errorf("%w: %s: missing host", ErrInvalidLocator, locator)
		}
		port := u.Port()
		switch {
		case port != "" && port != defaultPorts[u.Scheme]:
			u.Host = net.JoinHostPort(host, port)
		case strings.Contains(host, ":"):
			u.Host = "[" + host + "]"
		default:
			u.Host = host
		}
	case "file":
		if u.Host != "" && u.Host != "localhost" {
			return "", fmt.Errorf("%w: %s: remote file host", ErrInvalidLocator, locator)
		}
		u.Host = ""
		if !path.IsAbs(u.Path) {
			return "", fmt.Errorf("%w: %s: relative file path", ErrInvalidLocator, locator)
		}
	default:
		return "", fmt.Errorf("%w: %s: unsupported scheme %q", ErrInvalidLocator, locator, u.Scheme)
	}
	return u.String(), nil
}

// extension returns the file extension of the locator's path, used to keep
// decoders able to sniff downloaded files by name.
func extension(locator string) string {
	u, err := url.Parse(locator)
	if err != nil {
		return ""
	}
	ext := path.Ext(u.Path)
	if len(ext) > 6 || strings.ContainsAny(ext, "/?&=") {
		return ""
	}
	return strings.ToLower(ext)
}
