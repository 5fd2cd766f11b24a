package main

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// ImageExtensions is the allow-list of picture file extensions the catalog
// tracks. Matching is case-insensitive.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// pathSafe lists the bytes that are never percent-encoded in a URL path.
// Keeping '%' in the set makes EncodeURL idempotent: already-encoded %XX
// sequences pass through untouched instead of being double-encoded.
const pathSafe = "/%:@"

// EncodeURL percent-encodes the path component of a URL, leaving scheme,
// host, query and fragment exactly as given. Calling it twice on the same
// input yields the same output, which matters because the catalog both
// stores encoded URLs and re-derives them on later syncs.
func EncodeURL(raw string) string {
	rest := raw
	var prefix string

	if i := strings.Index(rest, "://"); i >= 0 {
		j := strings.IndexByte(rest[i+3:], '/')
		if j < 0 {
			// No path at all, nothing to encode
			return raw
		}
		prefix = rest[:i+3+j]
		rest = rest[i+3+j:]
	}

	var suffix string
	if k := strings.IndexAny(rest, "?#"); k >= 0 {
		suffix = rest[k:]
		rest = rest[:k]
	}

	return prefix + encodePath(rest) + suffix
}

func encodePath(p string) string {
	var b strings.Builder
	b.Grow(len(p))
	for i := 0; i < len(p); i++ {
		c := p[i]
		if isUnreservedByte(c) || strings.IndexByte(pathSafe, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

func isUnreservedByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c == '-' || c == '.' || c == '_' || c == '~'
}

// ResolveHref turns a possibly-relative WebDAV href into an absolute URL.
// Absolute hrefs are returned unchanged, root-relative ones are rebased onto
// the base URL's scheme and host, and plain-relative ones are joined onto
// the base directory.
func ResolveHref(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}

	if strings.HasPrefix(href, "/") {
		return baseURL.Scheme + "://" + baseURL.Host + href
	}

	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	dirURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return dirURL.ResolveReference(ref).String()
}

// ExtOf returns the lower-cased file extension of a URL's path, including
// the leading dot, or "" when the path has none.
func ExtOf(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	}
	return strings.ToLower(path.Ext(p))
}

// IsImageURL reports whether the URL's extension is on the allow-list.
func IsImageURL(raw string) bool {
	return ImageExtensions[ExtOf(raw)]
}
