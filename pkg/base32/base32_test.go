package base32_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/devicekey/pkg/base32"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []byte
	}{
		{"empty", "", []byte{}},
		{"rfc4648 f", "MY======", []byte("f")},
		{"rfc4648 fo", "MZXQ====", []byte("fo")},
		{"rfc4648 foo", "MZXW6===", []byte("foo")},
		{"rfc4648 foob", "MZXW6YQ=", []byte("foob")},
		{"rfc4648 fooba", "MZXW6YTB", []byte("fooba")},
		{"rfc4648 foobar", "MZXW6YTBOI======", []byte("foobar")},
		{"lower case", "mzxw6ytboi", []byte("foobar")},
		{"separators", "MZXW-6YTB OI\t", []byte("foobar")},
		{"underscores", "MZXW_6YTB_OI", []byte("foobar")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := base32.Decode(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"digit one", "MZXW1YTB", base32.ErrInvalidCharacter},
		{"digit eight", "MZXW8YTB", base32.ErrInvalidCharacter},
		{"symbol", "MZXW6YT!", base32.ErrInvalidCharacter},
		{"non ascii", "MZXWé", base32.ErrInvalidCharacter},
		{"non zero trailing bits", "MZ", base32.ErrInvalidPadding},
		{"single char non zero", "B", base32.ErrInvalidPadding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := base32.Decode(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, base32.ErrDecode)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	for size := 0; size <= 64; size++ {
		b := make([]byte, size)
		_, err := rand.Read(b)
		require.NoError(t, err)

		decoded, err := base32.Decode(base32.Encode(b))
		require.NoError(t, err)
		assert.Equal(t, b, decoded, "size %d", size)
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "MZXW6YTBOI", base32.Encode([]byte("foobar")))
	assert.Equal(t, "", base32.Encode(nil))
}

func TestIsStructurallyValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid", "JBSWY3DPEHPK3PXP", true},
		{"valid lower", "jbswy3dpehpk3pxp", true},
		{"trailing padding", "MZXW6YTBOI======", true},
		{"too short", "JBSWY3D", false},
		{"padding in the middle", "MZXW=6YTBOI", false},
		{"only padding", "========", false},
		{"invalid character", "JBSWY3DPEHPK3PX1", false},
		{"hyphen", "JBSW-Y3DP-EHPK", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, base32.IsStructurallyValid(tt.input))
		})
	}
}
