// Package base32 implements the RFC 4648 Base32 codec used for TOTP secrets.
//
// Decoding is lenient about presentation: whitespace, hyphens, underscores and
// '=' padding are stripped, and letters are matched case-insensitively. It is
// strict about content: any other character, or non-zero trailing bits in the
// last partial group, is rejected with an error wrapping ErrDecode.
//
// Encoding always produces upper-case, unpadded output.
//
// # Usage
//
//	key, err := base32.Decode("jbsw y3dp-ehpk 3pxp")
//	if err != nil {
//	    // errors.Is(err, base32.ErrDecode)
//	}
//	text := base32.Encode(key) // "JBSWY3DPEHPK3PXP"
//
// IsStructurallyValid is a cheap pre-check (alphabet, padding position,
// minimum length) for call sites that only need to reject obvious garbage.
package base32
