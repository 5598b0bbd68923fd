package otpauth

import (
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/dmitrymomot/devicekey/pkg/base32"
	"github.com/dmitrymomot/devicekey/pkg/totp"
)

// Kind is the OTP type of a parsed URI. Only TOTP exists.
type Kind string

const KindTOTP Kind = "totp"

const (
	scheme        = "otpauth"
	unknownIssuer = "Unknown"

	minPeriod = 15
	maxPeriod = 120
)

// ParsedOTP holds the normalized content of an otpauth URI.
type ParsedOTP struct {
	Kind      Kind
	Issuer    string
	Account   string
	Secret    string // upper-case Base32 without separators
	Algorithm totp.Algorithm
	Digits    int
	Period    int
}

// Parse parses an otpauth:// URI.
func Parse(uri string) (ParsedOTP, error) {
	u, err := url.Parse(strings.TrimSpace(uri))
	if err != nil || !strings.EqualFold(u.Scheme, scheme) {
		return ParsedOTP{}, ErrInvalidScheme
	}

	// FIXME: hotp URIs are accepted and treated as totp. The counter
	// parameter is dropped, so such entries produce wrong codes. Kept until
	// it is decided whether hotp should be rejected outright.
	switch strings.ToLower(u.Host) {
	case "totp", "hotp":
	default:
		return ParsedOTP{}, ErrUnsupportedType
	}

	labelIssuer, labelAccount := splitLabel(strings.Trim(u.Path, "/"))
	query := u.Query()

	rawSecret := lookup(query, "secret")
	if rawSecret == "" {
		return ParsedOTP{}, ErrMissingSecret
	}
	secret := normalizeSecret(rawSecret)
	if !base32.IsStructurallyValid(secret) {
		return ParsedOTP{}, ErrInvalidSecret
	}

	p := ParsedOTP{
		Kind:      KindTOTP,
		Secret:    secret,
		Algorithm: totp.DefaultAlgorithm,
		Digits:    totp.DefaultDigits,
		Period:    totp.DefaultPeriod,
	}

	switch {
	case lookup(query, "issuer") != "":
		p.Issuer = lookup(query, "issuer")
	case labelIssuer != "":
		p.Issuer = labelIssuer
	default:
		p.Issuer = unknownIssuer
	}

	p.Account = labelAccount
	if p.Account == "" {
		p.Account = lookup(query, "account")
	}

	if alg, ok := totp.ParseAlgorithm(lookup(query, "algorithm")); ok {
		p.Algorithm = alg
	}
	if d, err := strconv.Atoi(lookup(query, "digits")); err == nil && (d == 6 || d == 8) {
		p.Digits = d
	}
	if period, err := strconv.Atoi(lookup(query, "period")); err == nil && period >= minPeriod && period <= maxPeriod {
		p.Period = period
	}

	// Some exporters put the email address where the issuer belongs.
	if p.Account == "" && strings.Contains(p.Issuer, "@") {
		p.Account, p.Issuer = p.Issuer, ""
	}

	return p, nil
}

// splitLabel splits on the first ":" or " - ", whichever comes first.
func splitLabel(label string) (issuer, account string) {
	idx, width := -1, 0
	if i := strings.Index(label, ":"); i >= 0 {
		idx, width = i, 1
	}
	if i := strings.Index(label, " - "); i >= 0 && (idx < 0 || i < idx) {
		idx, width = i, 3
	}
	if idx < 0 {
		return "", label
	}
	return strings.TrimSpace(label[:idx]), strings.TrimSpace(label[idx+width:])
}

// lookup returns the first value of a query parameter matched
// case-insensitively. An exact match wins; otherwise the matching keys are
// tried in sorted order.
func lookup(q url.Values, name string) string {
	if v := q.Get(name); v != "" {
		return v
	}
	for _, k := range slices.Sorted(maps.Keys(q)) {
		if vs := q[k]; strings.EqualFold(k, name) && len(vs) > 0 && vs[0] != "" {
			return vs[0]
		}
	}
	return ""
}

func normalizeSecret(s string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, s))
}
