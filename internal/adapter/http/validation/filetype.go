// Package validation checks job inputs submitted over HTTP.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
)

// ErrDisallowedFileType is returned when a source file is not a video container.
var ErrDisallowedFileType = errors.New("file type not allowed")

// allowedMIMETypes lists the containers the engine is asked to read.
var allowedMIMETypes = map[string]bool{
	"video/mp4":        true,
	"video/quicktime":  true,
	"video/3gpp":       true,
	"video/webm":       true,
	"video/x-matroska": true,
	"video/x-msvideo":  true,
	"video/avi":        true,
	"video/mpeg":       true,
	"video/mp2t":       true,
	"video/x-flv":      true,
}

// magicBytesBufferSize covers the second MPEG-TS sync byte at offset 188.
const magicBytesBufferSize = 512

const tsPacketSize = 188

// ValidateMagicBytes sniffs the container type from the first bytes of
// reader and rewinds it. allowed reports whether the type is a video
// container from the allowlist.
func ValidateMagicBytes(reader io.ReadSeeker) (mime string, allowed bool, err error) {
	buf := make([]byte, magicBytesBufferSize)
	n, err := io.ReadFull(reader, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", false, err
	}

	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return "", false, err
	}

	if n == 0 {
		return "application/octet-stream", false, nil
	}
	buf = buf[:n]

	mime = detectContainer(buf)
	if mime == "" {
		mime = http.DetectContentType(buf)
	}
	return mime, allowedMIMETypes[mime], nil
}

// ValidateVideoFile checks that path is a regular file holding a video
// container and returns its detected type.
func ValidateVideoFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close() //nolint:errcheck

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a regular file", ErrDisallowedFileType, path)
	}

	mime, allowed, err := ValidateMagicBytes(f)
	if err != nil {
		return "", err
	}
	if !allowed {
		return mime, fmt.Errorf("%w: %s", ErrDisallowedFileType, mime)
	}
	return mime, nil
}

// detectContainer recognizes containers http.DetectContentType misses or
// reports too coarsely.
func detectContainer(buf []byte) string {
	if len(buf) < 4 {
		return ""
	}

	// EBML header, shared by WebM and Matroska. The doc type follows shortly.
	if bytes.HasPrefix(buf, []byte{0x1A, 0x45, 0xDF, 0xA3}) {
		if bytes.Contains(buf, []byte("matroska")) {
			return "video/x-matroska"
		}
		return "video/webm"
	}

	if bytes.HasPrefix(buf, []byte("FLV")) {
		return "video/x-flv"
	}

	// MPEG program stream pack header.
	if bytes.HasPrefix(buf, []byte{0x00, 0x00, 0x01, 0xBA}) {
		return "video/mpeg"
	}

	// MPEG transport stream: a sync byte every packet.
	if len(buf) > tsPacketSize && buf[0] == 0x47 && buf[tsPacketSize] == 0x47 {
		return "video/mp2t"
	}

	if len(buf) >= 12 {
		if bytes.Equal(buf[0:4], []byte("RIFF")) && bytes.Equal(buf[8:12], []byte("AVI ")) {
			return "video/x-msvideo"
		}

		// ISO base media: [size]["ftyp"][brand]
		if bytes.Equal(buf[4:8], []byte("ftyp")) {
			switch brand := string(buf[8:12]); brand {
			case "qt  ":
				return "video/quicktime"
			case "3gp4", "3gp5", "3gp6", "3g2a":
				return "video/3gpp"
			case "M4A ", "M4B ", "M4P ":
				return "audio/mp4"
			default:
				return "video/mp4"
			}
		}
	}

	return ""
}
