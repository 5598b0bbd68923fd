package totp_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/devicekey/pkg/totp"
)

var recoveryCodePattern = regexp.MustCompile(`^[0-9A-F]{4}(-[0-9A-F]{4}){3}$`)

func TestGenerateRecoveryCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		count   int
		wantErr bool
	}{
		{name: "ten codes", count: 10},
		{name: "one code", count: 1},
		{name: "zero codes", count: 0, wantErr: true},
		{name: "negative count", count: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			codes, err := totp.GenerateRecoveryCodes(tt.count)
			if tt.wantErr {
				require.ErrorIs(t, err, totp.ErrInvalidRecoveryCodeCount)
				assert.Nil(t, codes)
				return
			}
			require.NoError(t, err)
			require.Len(t, codes, tt.count)

			seen := make(map[string]struct{}, len(codes))
			for _, c := range codes {
				assert.Regexp(t, recoveryCodePattern, c)
				seen[c] = struct{}{}
			}
			assert.Len(t, seen, tt.count, "codes are unique")
		})
	}
}

func TestHashRecoveryCode(t *testing.T) {
	t.Parallel()

	h := totp.HashRecoveryCode("ABCD-EF01-2345-6789")
	assert.Len(t, h, 64)
	assert.Equal(t, h, totp.HashRecoveryCode("abcdef0123456789"))
	assert.Equal(t, h, totp.HashRecoveryCode(" abcd ef01 2345 6789 "))
	assert.NotEqual(t, h, totp.HashRecoveryCode("ABCD-EF01-2345-6780"))
}

func TestVerifyRecoveryCode(t *testing.T) {
	t.Parallel()

	codes, err := totp.GenerateRecoveryCodes(2)
	require.NoError(t, err)
	hash := totp.HashRecoveryCode(codes[0])

	assert.True(t, totp.VerifyRecoveryCode(codes[0], hash))
	assert.True(t, totp.VerifyRecoveryCode(strings.ToLower(codes[0]), hash))
	assert.False(t, totp.VerifyRecoveryCode(codes[1], hash))
	assert.False(t, totp.VerifyRecoveryCode("", hash))
	assert.False(t, totp.VerifyRecoveryCode(codes[0], ""))
}
