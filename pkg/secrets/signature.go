package secrets

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"crypto/x509"
)

// ParsePublicKey decodes a DER SubjectPublicKeyInfo holding a P-256 key.
func ParsePublicKey(der []byte) (*ecdsa.PublicKey, error) {
	if len(der) == 0 {
		return nil, ErrInvalidPublicKey
	}

	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}

	ecdsaPub, ok := pub.(*ecdsa.PublicKey)
	if !ok || ecdsaPub.Curve != elliptic.P256() {
		return nil, ErrInvalidPublicKey
	}
	return ecdsaPub, nil
}

// VerifySignature checks an ECDSA P-256 signature over message.
// publicKeyDER is a DER SubjectPublicKeyInfo, signatureDER an ASN.1
// SEQUENCE { r, s }. Malformed input and mismatches both return false.
func VerifySignature(publicKeyDER, message, signatureDER []byte) bool {
	if len(signatureDER) == 0 {
		return false
	}

	pub, err := ParsePublicKey(publicKeyDER)
	if err != nil {
		return false
	}

	digest := sha256.Sum256(message)
	return ecdsa.VerifyASN1(pub, digest[:], signatureDER)
}
