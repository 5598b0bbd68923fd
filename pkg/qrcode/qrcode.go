package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	ErrEmptyContent = errors.New("qr code content cannot be empty")
	ErrEncodeFailed = errors.New("failed to encode qr code")
)

// DefaultSize is the image width and height in pixels used when size <= 0.
const DefaultSize = 256

// PNG renders content as a square PNG image with medium error correction.
func PNG(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = DefaultSize
	}
	img, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrEncodeFailed, err)
	}
	return img, nil
}

// DataURI renders content as a base64 PNG data URI for <img src>.
func DataURI(content string, size int) (string, error) {
	img, err := PNG(content, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(img), nil
}
