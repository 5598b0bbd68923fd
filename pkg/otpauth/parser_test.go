package otpauth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/devicekey/pkg/otpauth"
	"github.com/dmitrymomot/devicekey/pkg/totp"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		uri  string
		want otpauth.ParsedOTP
	}{
		{
			name: "full uri",
			uri:  "otpauth://totp/ACME:alice@example.com?secret=JBSWY3DPEHPK3PXP&issuer=ACME&algorithm=SHA256&digits=8&period=60",
			want: otpauth.ParsedOTP{Kind: otpauth.KindTOTP, Issuer: "ACME", Account: "alice@example.com", Secret: "JBSWY3DPEHPK3PXP", Algorithm: totp.SHA256, Digits: 8, Period: 60},
		},
		{
			name: "defaults",
			uri:  "otpauth://totp/alice?secret=JBSWY3DPEHPK3PXP",
			want: otpauth.ParsedOTP{Kind: otpauth.KindTOTP, Issuer: "Unknown", Account: "alice", Secret: "JBSWY3DPEHPK3PXP", Algorithm: totp.SHA1, Digits: 6, Period: 30},
		},
		{
			name: "query issuer wins over label",
			uri:  "otpauth://totp/Old:bob?secret=JBSWY3DPEHPK3PXP&issuer=New",
			want: otpauth.ParsedOTP{Kind: otpauth.KindTOTP, Issuer: "New", Account: "bob", Secret: "JBSWY3DPEHPK3PXP", Algorithm: totp.SHA1, Digits: 6, Period: 30},
		},
		{
			name: "dash delimiter and percent encoding",
			uri:  "otpauth://totp/My%20Bank%20-%20carol?secret=JBSWY3DPEHPK3PXP",
			want: otpauth.ParsedOTP{Kind: otpauth.KindTOTP, Issuer: "My Bank", Account: "carol", Secret: "JBSWY3DPEHPK3PXP", Algorithm: totp.SHA1, Digits: 6, Period: 30},
		},
		{
			name: "first delimiter wins",
			uri:  "otpauth://totp/A%20-%20B:c?secret=JBSWY3DPEHPK3PXP",
			want: otpauth.ParsedOTP{Kind: otpauth.KindTOTP, Issuer: "A", Account: "B:c", Secret: "JBSWY3DPEHPK3PXP", Algorithm: totp.SHA1, Digits: 6, Period: 30},
		},
		{
			name: "account from query",
			uri:  "otpauth://totp/?secret=JBSWY3DPEHPK3PXP&account=dave&issuer=X",
			want: otpauth.ParsedOTP{Kind: otpauth.KindTOTP, Issuer: "X", Account: "dave", Secret: "JBSWY3DPEHPK3PXP", Algorithm: totp.SHA1, Digits: 6, Period: 30},
		},
		{
			name: "case insensitive parameters and secret normalization",
			uri:  "otpauth://totp/X:eve?SECRET=jbsw-y3dp%20ehpk-3pxp&Algorithm=sha512&DIGITS=8&Period=15",
			want: otpauth.ParsedOTP{Kind: otpauth.KindTOTP, Issuer: "X", Account: "eve", Secret: "JBSWY3DPEHPK3PXP", Algorithm: totp.SHA512, Digits: 8, Period: 15},
		},
		{
			name: "hotp coerced to totp",
			uri:  "otpauth://hotp/X:frank?secret=JBSWY3DPEHPK3PXP&counter=5",
			want: otpauth.ParsedOTP{Kind: otpauth.KindTOTP, Issuer: "X", Account: "frank", Secret: "JBSWY3DPEHPK3PXP", Algorithm: totp.SHA1, Digits: 6, Period: 30},
		},
		{
			name: "email in issuer is swapped into account",
			uri:  "otpauth://totp/?secret=JBSWY3DPEHPK3PXP&issuer=grace@example.com",
			want: otpauth.ParsedOTP{Kind: otpauth.KindTOTP, Issuer: "", Account: "grace@example.com", Secret: "JBSWY3DPEHPK3PXP", Algorithm: totp.SHA1, Digits: 6, Period: 30},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := otpauth.Parse(tt.uri)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_CaseVariantsAreStable(t *testing.T) {
	t.Parallel()

	// Neither key is the lower-case name, so the sorted-first variant wins.
	uri := "otpauth://totp/X:eve?Secret=JBSWY3DPEHPK3PXP&SECRET=GEZDGNBVGY3TQOJQ&Digits=6&DIGITS=8"
	for range 50 {
		got, err := otpauth.Parse(uri)
		require.NoError(t, err)
		assert.Equal(t, "GEZDGNBVGY3TQOJQ", got.Secret)
		assert.Equal(t, 8, got.Digits)
	}

	got, err := otpauth.Parse("otpauth://totp/X:eve?SECRET=GEZDGNBVGY3TQOJQ&secret=JBSWY3DPEHPK3PXP")
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", got.Secret, "exact name wins")
}

func TestParse_SilentDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		query     string
		digits    int
		period    int
		algorithm totp.Algorithm
	}{
		{"digits 7", "&digits=7", 6, 30, totp.SHA1},
		{"digits text", "&digits=six", 6, 30, totp.SHA1},
		{"period 5", "&period=5", 6, 30, totp.SHA1},
		{"period 600", "&period=600", 6, 30, totp.SHA1},
		{"period bounds", "&period=120", 6, 120, totp.SHA1},
		{"algorithm SHA3", "&algorithm=SHA3", 6, 30, totp.SHA1},
		{"algorithm MD5", "&algorithm=MD5", 6, 30, totp.SHA1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := otpauth.Parse("otpauth://totp/X:y?secret=JBSWY3DPEHPK3PXP" + tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.digits, got.Digits)
			assert.Equal(t, tt.period, got.Period)
			assert.Equal(t, tt.algorithm, got.Algorithm)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		uri     string
		wantErr error
	}{
		{"http scheme", "https://totp/X:y?secret=JBSWY3DPEHPK3PXP", otpauth.ErrInvalidScheme},
		{"not a uri", "::::", otpauth.ErrInvalidScheme},
		{"empty", "", otpauth.ErrInvalidScheme},
		{"unsupported type", "otpauth://motp/X:y?secret=JBSWY3DPEHPK3PXP", otpauth.ErrUnsupportedType},
		{"missing secret", "otpauth://totp/X:y?issuer=X", otpauth.ErrMissingSecret},
		{"empty secret", "otpauth://totp/X:y?secret=", otpauth.ErrMissingSecret},
		{"short secret", "otpauth://totp/X:y?secret=JBSW", otpauth.ErrInvalidSecret},
		{"bad alphabet", "otpauth://totp/X:y?secret=JBSWY3DPEHPK3PX1", otpauth.ErrInvalidSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := otpauth.Parse(tt.uri)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, otpauth.ErrValidation)
		})
	}
}
