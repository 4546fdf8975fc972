package helpers

import "strings"

// DisplayURL resolves a stored image reference to a displayable URL. Absolute
// URLs (already-hosted assets) pass through unchanged; bare filenames are
// prefixed with the configured image-hosting base.
func DisplayURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(ref, "/")
}
