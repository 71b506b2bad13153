// Package imaging turns uploaded bytes into an image a vision model accepts.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"strings"

	// Register decoders for the formats we can downscale.
	_ "image/gif"
	_ "image/png"

	"github.com/nfnt/resize"

	"github.com/helmcode/leafdoc/pkg/llm"
)

const (
	// DefaultMaxDimension bounds the longest side of an image sent upstream.
	DefaultMaxDimension = 1024
	// MaxPixels bounds width*height of any image decoded in memory.
	MaxPixels = 40_000_000
)

var (
	ErrEmptyImage    = errors.New("image is empty")
	ErrNotImage      = errors.New("file is not an image")
	ErrImageTooLarge = errors.New("image dimensions too large")
)

// DetectMIME sniffs the content type of data.
func DetectMIME(data []byte) string {
	mime := http.DetectContentType(data)
	if i := strings.Index(mime, ";"); i != -1 {
		mime = mime[:i]
	}
	return mime
}

// Prepare validates data and downscales it when its longest side exceeds
// maxDim. Images above MaxPixels are rejected before decoding. Small images
// and formats the standard decoders do not know (webp, for instance) are
// passed through untouched. maxDim 0 disables resizing.
func Prepare(data []byte, maxDim uint) (llm.Image, error) {
	if len(data) == 0 {
		return llm.Image{}, ErrEmptyImage
	}

	mime := DetectMIME(data)
	if !strings.HasPrefix(mime, "image/") {
		return llm.Image{}, fmt.Errorf("%w: detected %s", ErrNotImage, mime)
	}
	passthrough := llm.Image{Data: data, MIMEType: mime}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return passthrough, nil
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return llm.Image{}, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	if maxDim == 0 {
		return passthrough, nil
	}
	if uint(cfg.Width) <= maxDim && uint(cfg.Height) <= maxDim {
		return passthrough, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return llm.Image{}, fmt.Errorf("decode %s: %w", mime, err)
	}

	thumb := resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 90}); err != nil {
		return llm.Image{}, fmt.Errorf("encode jpeg: %w", err)
	}
	return llm.Image{Data: buf.Bytes(), MIMEType: "image/jpeg"}, nil
}
