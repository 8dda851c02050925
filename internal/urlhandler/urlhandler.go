package urlhandler

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// Regex for cleaning filenames
var (
	unsafeFilenameCharsRegex = regexp.MustCompile(`[<>:"/\\|?*]+`)
	multipleUnderscoresRegex = regexp.MustCompile(`_+`)
)

// NormalizeURL normalizes a URL string, ensuring it has a scheme, a host, and no fragment.
func NormalizeURL(rawURL string) (string, error) {
	trimmedURL := strings.TrimSpace(rawURL)
	if trimmedURL == "" {
		return "", errors.New("URL is empty or only whitespace")
	}

	// Add scheme if missing
	if !strings.Contains(trimmedURL, "://") && !strings.HasPrefix(trimmedURL, "//") {
		trimmedURL = "http://" + trimmedURL
	}

	parsedURL, err := url.Parse(trimmedURL)
	if err != nil {
		return "", fmt.Errorf("could not parse URL '%s': %w", trimmedURL, err)
	}

	if parsedURL.Host == "" {
		return "", errors.New("URL lacks a valid hostname")
	}

	parsedURL.Fragment = ""
	return parsedURL.String(), nil
}

// ValidateURLFormat checks that a string parses as an absolute http(s) URL.
func ValidateURLFormat(rawURL string) error {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("could not parse URL '%s': %w", rawURL, err)
	}
	if !parsed.IsAbs() {
		return fmt.Errorf("URL '%s' is not absolute", rawURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL '%s' has unsupported scheme '%s'", rawURL, parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL '%s' lacks a hostname", rawURL)
	}
	return nil
}

// ResolveURL resolves a (possibly relative) URL string against a base URL.
// The returned URL is also normalized.
func ResolveURL(href string, base *url.URL) (string, error) {
	trimmedHref := strings.TrimSpace(href)
	if trimmedHref == "" {
		return "", errors.New("href is empty")
	}

	var resolvedURL *url.URL

	if base == nil {
		parsedHref, parseErr := url.Parse(trimmedHref)
		if parseErr != nil {
			return "", fmt.Errorf("error parsing base-less href '%s': %w", trimmedHref, parseErr)
		}
		if !parsedHref.IsAbs() {
			return "", fmt.Errorf("cannot process relative URL '%s' without a base URL", trimmedHref)
		}
		resolvedURL = parsedHref
	} else {
		resolved, resolveErr := base.Parse(trimmedHref)
		if resolveErr != nil {
			return "", fmt.Errorf("error resolving href '%s' with base '%s': %w", trimmedHref, base.String(), resolveErr)
		}
		resolvedURL = resolved
	}

	return NormalizeURL(resolvedURL.String())
}

// FilenameFromURL derives the last path segment of a URL as a filename.
func FilenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return path.Base(rawURL)
	}
	name := path.Base(parsed.Path)
	if name == "." || name == "/" {
		return ""
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return name
}

// SanitizeFilename replaces characters that are unsafe in filenames with underscores
// and collapses runs of underscores.
func SanitizeFilename(name string) string {
	cleaned := unsafeFilenameCharsRegex.ReplaceAllString(name, "_")
	cleaned = multipleUnderscoresRegex.ReplaceAllString(cleaned, "_")
	return strings.Trim(cleaned, "_ ")
}

// TitleFromFilename produces a human-readable label from a filename by stripping
// the extension, replacing underscores, and title-casing words. Used when an
// anchor carries no usable text.
func TitleFromFilename(filename string) string {
	base := strings.TrimSuffix(filename, path.Ext(filename))
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")

	words := strings.Fields(base)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
