// Package deviceauth implements device-bound two-factor authentication.
//
// A user registers one or more devices, each holding a P-256 key pair whose
// public half is stored with the device. Registration scores the device's
// attestation token through an Attestor; a score of TrustThreshold or more
// makes the device trusted.
//
// Sign-in runs as a challenge:
//
//	ch, err := svc.BeginAuth(ctx, userID)      // picks a trusted device, pushes to it
//	view, err := svc.GetChallenge(ctx, ch.ID)  // device fetches the nonce
//	// device signs SignedMessage(userID, deviceID, nonce) with its private key
//	err = svc.Approve(ctx, ch.ID, deviceID, signatureDER)
//
// A challenge lives for DefaultChallengeTTL and can be approved once.
// The single-use guarantee is delegated to ChallengeStorage.ConsumeChallenge,
// which every store implements as an atomic compare-and-set.
//
// TOTP is the second factor. Secrets arrive as Base32 (SetupTOTPSecret), as
// otpauth:// URIs (ImportTOTPURI) or are generated (EnrollTOTP). They are
// sealed with AES-256-GCM under the service sealing key before storage and
// opened only for the duration of a VerifyTOTPCode call.
//
// Errors match one of ErrValidation, ErrNotFound, ErrGone, ErrUnauthorized,
// ErrDependencyUnavailable or ErrInternal with errors.Is. Storage failures
// that fit none of them are returned wrapped and should be treated as internal.
//
// MemoryStorage serves development and tests; the pgstore and redisstore
// subpackages provide PostgreSQL and Redis persistence.
package deviceauth
