package crawl

import (
	"net/url"
	"path"
	"strings"
)

// skippedExtensions are paths that never lead to a report-worthy page.
var skippedExtensions = func() map[string]bool {
	set := make(map[string]bool)
	for _, ext := range strings.Fields(`
		.png .jpg .jpeg .gif .svg .webp .ico .bmp
		.css .js .mjs .map .woff .woff2 .ttf .eot
		.mp4 .webm .mp3 .wav
		.zip .tar .gz
		.pdf .doc .docx .xls .xlsx`) {
		set[ext] = true
	}
	return set
}()

// hostKey lower-cases the host and drops a leading "www.".
func hostKey(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// IsSameDomain reports whether rawURL lives on domain. "www." is ignored
// on both sides.
func IsSameDomain(rawURL string, domain string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}
	return hostKey(parsed.Host) == hostKey(domain)
}

// IsStaticAsset reports whether rawURL points at an asset rather than a page.
func IsStaticAsset(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return skippedExtensions[strings.ToLower(path.Ext(parsed.Path))]
}

// IsCrawlable combines the rules applied to every discovered link.
func IsCrawlable(rawURL string, domain string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return IsSameDomain(rawURL, domain) && !IsStaticAsset(rawURL)
}

// NormalizeURL canonicalizes rawURL for deduplication: lower-case scheme
// and host, no fragment, no trailing slash except on the root path.
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	parsed.RawFragment = ""
	if parsed.Path != "/" {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
		parsed.RawPath = ""
	}

	return parsed.String()
}
