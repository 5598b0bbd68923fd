package qrcode_test

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/devicekey/pkg/qrcode"
)

const uri = "otpauth://totp/Acme:alice@example.com?secret=JBSWY3DPEHPK3PXP&issuer=Acme"

func TestPNG(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		size     int
		wantSize int
	}{
		{"explicit size", 128, 128},
		{"default size", 0, qrcode.DefaultSize},
		{"negative size", -5, qrcode.DefaultSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := qrcode.PNG(uri, tt.size)
			require.NoError(t, err)

			img, err := png.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, tt.wantSize, img.Bounds().Dx())
			assert.Equal(t, tt.wantSize, img.Bounds().Dy())
		})
	}

	t.Run("empty content", func(t *testing.T) {
		t.Parallel()
		for _, content := range []string{"", "  \n\t"} {
			data, err := qrcode.PNG(content, 128)
			assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
			assert.Nil(t, data)
		}
	})
}

func TestDataURI(t *testing.T) {
	t.Parallel()

	out, err := qrcode.DataURI(uri, 128)
	require.NoError(t, err)

	const prefix = "data:image/png;base64,"
	require.True(t, strings.HasPrefix(out, prefix))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(out, prefix))
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(raw))
	assert.NoError(t, err)

	_, err = qrcode.DataURI("", 128)
	assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
}
