package common

import (
	"path"
	"strings"
)

// ImageContentType infers the MIME type of an image from its extension.
// Unknown extensions are treated as JPEG. The server presigns uploads with
// this type and the client must send the same Content-Type header.
func ImageContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
