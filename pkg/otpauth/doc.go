// Package otpauth parses otpauth:// provisioning URIs as produced by
// authenticator apps and QR codes.
//
// Parse is forgiving about optional parameters and strict about the secret:
// an unsupported algorithm, digits other than 6 or 8, or a period outside
// [15, 120] silently fall back to SHA1, 6 and 30. A missing secret or one that
// is not Base32 fails with an error wrapping ErrValidation.
//
//	p, err := otpauth.Parse("otpauth://totp/ACME:alice@example.com?secret=JBSWY3DPEHPK3PXP&issuer=ACME")
//	if err != nil {
//	    // errors.Is(err, otpauth.ErrValidation)
//	}
//	code, _ := totp.Code(p.Secret, p.Algorithm, p.Digits, p.Period, time.Now())
package otpauth
