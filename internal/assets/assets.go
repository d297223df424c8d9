// Package assets stores uploaded images (profile pictures, message
// attachments) on an external asset host and returns a public URL. Clients
// send images as base64 data URLs, the way browser file readers produce them.
package assets

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
)

// ErrInvalidImage reports an upload payload that is not a well-formed base64
// image data URL.
var ErrInvalidImage = errors.New("invalid image payload")

// Store uploads an encoded image and returns its public URL.
type Store interface {
	Upload(ctx context.Context, dataURL string) (string, error)
}

// decodeDataURL splits "data:image/png;base64,AAAA..." into raw bytes and a
// content type.
func decodeDataURL(dataURL string) (data []byte, contentType string, err error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return nil, "", ErrInvalidImage
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", ErrInvalidImage
	}
	contentType, encoding, ok := strings.Cut(meta, ";")
	if !ok || encoding != "base64" || !strings.HasPrefix(contentType, "image/") {
		return nil, "", ErrInvalidImage
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", ErrInvalidImage
	}
	return data, contentType, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
