// Package secrets provides the cryptographic primitives behind device
// approvals and TOTP secret storage.
//
// Every function is a pure function of its inputs and is safe for concurrent
// use. The package never keeps key material between calls.
//
// # Primitives
//
//  1. RandomNonce – 16 bytes from crypto/rand, used to bind a challenge to a
//     single approval attempt.
//  2. Seal / Open – AES-256-GCM. Sealed output is self-contained:
//     nonce || ciphertext || tag. Open reports every failure (wrong key,
//     truncated or tampered input) as the same ErrAuthenticationFailed.
//  3. DeriveKey – HKDF-SHA-256 extract-and-expand over a passphrase with a
//     per-vault salt and the fixed info tag "devicekey-vault-kdf-v1".
//     KDFParams also carries Iterations, Memory and Parallelism so stored
//     parameters stay compatible with heavier KDFs; HKDF ignores them.
//  4. VerifySignature – ECDSA P-256 over SHA-256 with a DER SubjectPublicKeyInfo
//     key and a DER (ASN.1) signature. It returns a bare bool and never
//     distinguishes malformed input from a genuine mismatch.
//
// # Usage
//
//	key, _ := secrets.ParseKey(os.Getenv("TOTP_ENCRYPTION_KEY"))
//
//	sealed, err := secrets.Seal(rawSecret, key)
//	if err != nil {
//	    // handle error
//	}
//
//	plain, err := secrets.Open(sealed, key)
//	if errors.Is(err, secrets.ErrAuthenticationFailed) {
//	    // reject
//	}
//
// # Error Handling
//
// Failures wrap package sentinels such as ErrSealFailed or ErrKeyDerivationFailed.
// Use errors.Is to match against them.
package secrets
