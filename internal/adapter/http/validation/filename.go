package validation

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const maxFilenameLength = 255

// SanitizeFilename makes name safe for a Content-Disposition header.
// Control characters, quotes and path separators become underscores and
// the result is cut to 255 bytes, keeping the extension when it fits.
// Blank or fully replaced names become "file".
func SanitizeFilename(name string) string {
	result := strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 || r == 127 || strings.ContainsRune(`"\/:`, r) {
			return '_'
		}
		return r
	}, name))

	if strings.Trim(result, "_") == "" {
		return "file"
	}
	if len(result) <= maxFilenameLength {
		return result
	}

	ext := filepath.Ext(result)
	if ext == "" || len(ext) >= maxFilenameLength {
		return truncateToBytes(result, maxFilenameLength)
	}
	return truncateToBytes(strings.TrimSuffix(result, ext), maxFilenameLength-len(ext)) + ext
}

// truncateToBytes cuts s to at most n bytes on a rune boundary.
func truncateToBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// ArtifactDisposition returns the attachment header for downloading the
// file at path.
func ArtifactDisposition(path string) string {
	return fmt.Sprintf("attachment; filename=%q", SanitizeFilename(filepath.Base(path)))
}
