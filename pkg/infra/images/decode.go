package images

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	// Register decoders for the supported formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/nestline/nestline/pkg/domain/post"
)

const MaxImageBytes = 2 << 20 // 2 MiB decoded

var (
	ErrTooLarge    = errors.New("image exceeds maximum size")
	ErrUnsupported = errors.New("unsupported image type")
	ErrUndecodable = errors.New("image payload could not be decoded")
)

var formatMimeTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// DecodeBase64 turns a base64 image payload (with or without a data-URI
// prefix) into a validated Image. The payload must parse as one of the
// supported formats; the stored MIME type comes from the detected format, not
// the client's declaration.
func DecodeBase64(encoded, declaredType string) (*post.Image, error) {
	if idx := strings.Index(encoded, ";base64,"); idx >= 0 {
		encoded = encoded[idx+len(";base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if len(data) > MaxImageBytes {
		return nil, ErrTooLarge
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	mimeType, ok := formatMimeTypes[format]
	if !ok {
		return nil, ErrUnsupported
	}
	if declaredType != "" && declaredType != mimeType {
		return nil, fmt.Errorf("%w: declared %s, detected %s", ErrUnsupported, declaredType, mimeType)
	}

	return &post.Image{Data: data, MimeType: mimeType}, nil
}
