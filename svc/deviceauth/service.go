package deviceauth

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/devicekey/pkg/audit"
	"github.com/dmitrymomot/devicekey/pkg/base32"
	"github.com/dmitrymomot/devicekey/pkg/logger"
	"github.com/dmitrymomot/devicekey/pkg/otpauth"
	"github.com/dmitrymomot/devicekey/pkg/push"
	"github.com/dmitrymomot/devicekey/pkg/qrcode"
	"github.com/dmitrymomot/devicekey/pkg/secrets"
	"github.com/dmitrymomot/devicekey/pkg/totp"
)

// Service runs device registration, challenge approval and TOTP.
// It is safe for concurrent use.
type Service struct {
	storage    Storage
	challenges ChallengeStorage
	sealingKey []byte

	logger       *slog.Logger
	now          func() time.Time
	attestor     Attestor
	pusher       push.Sender
	auditor      audit.Recorder
	challengeTTL time.Duration
	issuer       string
	qrSize       int
	recoveryN    int
}

// NewService returns a Service persisting to storage and sealing TOTP
// secrets under sealingKey, which must be 32 bytes.
func NewService(storage Storage, sealingKey []byte, opts ...Option) (*Service, error) {
	if len(sealingKey) != secrets.KeySize {
		return nil, ErrInvalidSealingKey
	}

	s := &Service{
		storage:      storage,
		challenges:   storage,
		sealingKey:   bytes.Clone(sealingKey),
		logger:       logger.Discard(),
		now:          time.Now,
		attestor:     HeuristicAttestor{},
		pusher:       push.NoopSender{},
		challengeTTL: DefaultChallengeTTL,
		issuer:       "devicekey",
		qrSize:       qrcode.DefaultSize,
		recoveryN:    DefaultRecoveryCodes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("deviceauth"))

	return s, nil
}

// RegisterDevice scores the attestation token, derives the trust level and
// stores the device.
func (s *Service) RegisterDevice(ctx context.Context, p RegisterDeviceParams) (Device, error) {
	if err := s.requireUser(ctx, p.UserID); err != nil {
		return Device{}, err
	}
	if _, err := secrets.ParsePublicKey(p.PublicKey); err != nil {
		return Device{}, ErrInvalidPublicKey
	}

	score, err := s.attestor.Score(ctx, p.AttestationToken)
	if err != nil {
		s.logger.WarnContext(ctx, "attestation scoring failed, registering untrusted",
			logger.UserID(p.UserID), logger.Error(err))
		score = 0
	}

	now := s.now()
	device := Device{
		ID:               uuid.New(),
		UserID:           p.UserID,
		PublicKey:        bytes.Clone(p.PublicKey),
		PushToken:        p.PushToken,
		ModelHash:        p.ModelHash,
		OSHash:           p.OSHash,
		TrustLevel:       trustLevelFor(score),
		AttestationScore: score,
		LastSeenAt:       now,
		CreatedAt:        now,
	}
	if err := s.storage.CreateDevice(ctx, device); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Device{}, err
		}
		return Device{}, fmt.Errorf("create device: %w", err)
	}

	s.logger.InfoContext(ctx, "device registered",
		logger.UserID(device.UserID),
		logger.DeviceID(device.ID),
		logger.AttestationScore(score),
		logger.TrustLevel(device.TrustLevel),
	)
	s.record(ctx, "device.registered", nil,
		audit.WithUser(device.UserID.String()),
		audit.WithResource("device", device.ID.String()),
		audit.WithMetadata("trust_level", device.TrustLevel),
		audit.WithMetadata("attestation_score", score),
	)
	return device, nil
}

// BeginAuth issues a challenge for the user's most recently seen trusted
// device and notifies it. Notification failures are logged, not returned.
func (s *Service) BeginAuth(ctx context.Context, userID uuid.UUID) (Challenge, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return Challenge{}, err
	}

	devices, err := s.storage.ListUserDevices(ctx, userID)
	if err != nil {
		return Challenge{}, fmt.Errorf("list devices: %w", err)
	}
	device, ok := selectTrustedDevice(devices)
	if !ok {
		return Challenge{}, ErrNoTrustedDevice
	}

	nonce, err := secrets.RandomNonce()
	if err != nil {
		return Challenge{}, errors.Join(ErrInternal, err)
	}

	now := s.now()
	challenge := Challenge{
		ID:        uuid.New(),
		UserID:    userID,
		DeviceID:  device.ID,
		Nonce:     nonce,
		CreatedAt: now,
		ExpiresAt: now.Add(s.challengeTTL),
	}
	if err := s.challenges.CreateChallenge(ctx, challenge); err != nil {
		return Challenge{}, fmt.Errorf("create challenge: %w", err)
	}

	s.notify(ctx, device, challenge)

	s.logger.InfoContext(ctx, "challenge issued",
		logger.UserID(userID),
		logger.DeviceID(device.ID),
		logger.ChallengeID(challenge.ID),
	)
	s.record(ctx, "challenge.created", nil,
		audit.WithUser(userID.String()),
		audit.WithResource("challenge", challenge.ID.String()),
		audit.WithMetadata("device_id", device.ID.String()),
	)
	return challenge, nil
}

// GetChallenge returns a pending challenge. Used or expired challenges
// yield ErrChallengeGone.
func (s *Service) GetChallenge(ctx context.Context, challengeID uuid.UUID) (ChallengeView, error) {
	challenge, err := s.challenges.GetChallenge(ctx, challengeID)
	if err != nil {
		return ChallengeView{}, err
	}
	if !challenge.ApprovableAt(s.now()) {
		return ChallengeView{}, ErrChallengeGone
	}
	return ChallengeView{
		ID:          challenge.ID,
		UserID:      challenge.UserID,
		NonceBase64: base64.StdEncoding.EncodeToString(challenge.Nonce),
	}, nil
}

// Approve verifies the device's signature over SignedMessage and consumes
// the challenge. Exactly one of any concurrent approvals succeeds; the rest
// get ErrChallengeGone.
func (s *Service) Approve(ctx context.Context, challengeID, deviceID uuid.UUID, signature []byte) error {
	challenge, err := s.challenges.GetChallenge(ctx, challengeID)
	if err != nil {
		return err
	}
	if !challenge.ApprovableAt(s.now()) {
		return ErrChallengeGone
	}

	device, err := s.storage.GetDevice(ctx, deviceID)
	if err != nil {
		return err
	}
	if device.UserID != challenge.UserID {
		s.logger.WarnContext(ctx, "approval from foreign device",
			logger.ChallengeID(challengeID), logger.DeviceID(deviceID))
		s.recordRejection(ctx, challenge, deviceID, ErrDeviceMismatch)
		return ErrDeviceMismatch
	}

	msg := SignedMessage(challenge.UserID, device.ID, challenge.Nonce)
	if !secrets.VerifySignature(device.PublicKey, msg, signature) {
		s.logger.WarnContext(ctx, "challenge signature rejected",
			logger.ChallengeID(challengeID), logger.DeviceID(deviceID))
		s.recordRejection(ctx, challenge, deviceID, ErrInvalidSignature)
		return ErrInvalidSignature
	}

	now := s.now()
	if err := s.challenges.ConsumeChallenge(ctx, challengeID, now); err != nil {
		if errors.Is(err, ErrChallengeGone) {
			s.recordRejection(ctx, challenge, deviceID, err)
		}
		return err
	}

	if err := s.storage.TouchDevice(ctx, device.ID, now); err != nil {
		s.logger.ErrorContext(ctx, "failed to update device last seen",
			logger.DeviceID(device.ID), logger.Error(err))
	}

	s.logger.InfoContext(ctx, "challenge approved",
		logger.UserID(challenge.UserID),
		logger.DeviceID(device.ID),
		logger.ChallengeID(challengeID),
	)
	s.record(ctx, "challenge.approved", nil,
		audit.WithUser(challenge.UserID.String()),
		audit.WithResource("challenge", challengeID.String()),
		audit.WithMetadata("device_id", device.ID.String()),
	)
	return nil
}

// SetupTOTPSecret seals and stores a Base32 secret with SHA1, 6 digits and a
// 30 second period, replacing any secret the user already has.
func (s *Service) SetupTOTPSecret(ctx context.Context, userID uuid.UUID, base32Secret string) error {
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}

	key, err := base32.Decode(base32Secret)
	if err != nil {
		return errors.Join(ErrInvalidSecret, err)
	}
	if len(key) == 0 {
		return ErrInvalidSecret
	}

	return s.storeSecret(ctx, userID, "setup", key, totp.DefaultAlgorithm, totp.DefaultDigits, totp.DefaultPeriod)
}

// ImportTOTPURI parses an otpauth:// URI and stores its secret with the
// algorithm, digits and period it declares.
func (s *Service) ImportTOTPURI(ctx context.Context, userID uuid.UUID, uri string) (otpauth.ParsedOTP, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return otpauth.ParsedOTP{}, err
	}

	parsed, err := otpauth.Parse(uri)
	if err != nil {
		return otpauth.ParsedOTP{}, errors.Join(ErrInvalidURI, err)
	}

	key, err := base32.Decode(parsed.Secret)
	if err != nil || len(key) == 0 {
		return otpauth.ParsedOTP{}, errors.Join(ErrInvalidSecret, err)
	}

	if err := s.storeSecret(ctx, userID, "import", key, parsed.Algorithm, parsed.Digits, parsed.Period); err != nil {
		return otpauth.ParsedOTP{}, err
	}
	return parsed, nil
}

// EnrollTOTP generates a new secret for the user, stores it and returns the
// provisioning URI with a QR code. An empty issuer uses the service default.
func (s *Service) EnrollTOTP(ctx context.Context, userID uuid.UUID, issuer, account string) (Enrollment, error) {
	if account == "" {
		return Enrollment{}, ErrMissingAccount
	}
	if issuer == "" {
		issuer = s.issuer
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return Enrollment{}, err
	}

	secret, err := totp.GenerateSecretKey()
	if err != nil {
		return Enrollment{}, errors.Join(ErrInternal, err)
	}
	uri, err := totp.GetTOTPURI(totp.TOTPParams{
		Secret:      secret,
		AccountName: account,
		Issuer:      issuer,
	})
	if err != nil {
		return Enrollment{}, errors.Join(ErrInternal, err)
	}
	qr, err := qrcode.DataURI(uri, s.qrSize)
	if err != nil {
		return Enrollment{}, errors.Join(ErrInternal, err)
	}

	key, err := base32.Decode(secret)
	if err != nil {
		return Enrollment{}, errors.Join(ErrInternal, err)
	}
	if err := s.storeSecret(ctx, userID, "enroll", key, totp.DefaultAlgorithm, totp.DefaultDigits, totp.DefaultPeriod); err != nil {
		return Enrollment{}, err
	}

	codes, err := s.issueRecoveryCodes(ctx, userID)
	if err != nil {
		return Enrollment{}, err
	}

	return Enrollment{Secret: secret, URI: uri, QRCode: qr, RecoveryCodes: codes}, nil
}

// RedeemRecoveryCode accepts one of the codes issued by EnrollTOTP in place
// of a TOTP code. Each code works once.
func (s *Service) RedeemRecoveryCode(ctx context.Context, userID uuid.UUID, code string) error {
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}

	hashes, err := s.storage.ListRecoveryCodes(ctx, userID)
	if err != nil {
		return fmt.Errorf("list recovery codes: %w", err)
	}

	// Every stored hash is compared so timing does not depend on the position.
	var match string
	for _, h := range hashes {
		if totp.VerifyRecoveryCode(code, h) {
			match = h
		}
	}
	if match == "" {
		s.record(ctx, "totp.recovery_rejected", ErrInvalidRecoveryCode, audit.WithUser(userID.String()))
		return ErrInvalidRecoveryCode
	}

	if err := s.storage.ConsumeRecoveryCode(ctx, userID, match); err != nil {
		if errors.Is(err, ErrRecoveryCodeNotFound) {
			s.record(ctx, "totp.recovery_rejected", ErrInvalidRecoveryCode, audit.WithUser(userID.String()))
			return ErrInvalidRecoveryCode
		}
		return fmt.Errorf("consume recovery code: %w", err)
	}

	remaining := len(hashes) - 1
	s.logger.InfoContext(ctx, "recovery code redeemed", logger.UserID(userID), slog.Int("remaining", remaining))
	s.record(ctx, "totp.recovery_used", nil,
		audit.WithUser(userID.String()),
		audit.WithMetadata("remaining", remaining),
	)
	return nil
}

// issueRecoveryCodes replaces the user's recovery codes and returns the new
// plaintext codes.
func (s *Service) issueRecoveryCodes(ctx context.Context, userID uuid.UUID) ([]string, error) {
	codes, err := totp.GenerateRecoveryCodes(s.recoveryN)
	if err != nil {
		return nil, errors.Join(ErrInternal, err)
	}

	hashes := make([]string, len(codes))
	for i, c := range codes {
		hashes[i] = totp.HashRecoveryCode(c)
	}
	if err := s.storage.SaveRecoveryCodes(ctx, userID, hashes); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("save recovery codes: %w", err)
	}

	s.record(ctx, "totp.recovery_codes_issued", nil,
		audit.WithUser(userID.String()),
		audit.WithMetadata("count", len(codes)),
	)
	return codes, nil
}

// VerifyTOTPCode checks code against the user's stored secret at the
// current time. A secret that no longer opens under the sealing key is an
// internal error, not a wrong code.
func (s *Service) VerifyTOTPCode(ctx context.Context, userID uuid.UUID, code string) error {
	stored, err := s.storage.GetTOTPSecret(ctx, userID)
	if err != nil {
		return err
	}

	key, err := secrets.Open(stored.Sealed, s.sealingKey)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to open totp secret",
			logger.UserID(userID), logger.Error(err))
		return errors.Join(ErrInternal, err)
	}
	defer secrets.Wipe(key)

	expected, err := totp.CodeFromKey(key, stored.Algorithm, stored.Digits, stored.Period, s.now())
	if err != nil {
		return errors.Join(ErrInternal, err)
	}

	if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) != 1 {
		s.record(ctx, "totp.rejected", ErrInvalidCode, audit.WithUser(userID.String()))
		return ErrInvalidCode
	}
	s.record(ctx, "totp.verified", nil, audit.WithUser(userID.String()))
	return nil
}

func (s *Service) storeSecret(ctx context.Context, userID uuid.UUID, source string, key []byte, alg totp.Algorithm, digits, period int) error {
	defer secrets.Wipe(key)

	sealed, err := secrets.Seal(key, s.sealingKey)
	if err != nil {
		return errors.Join(ErrInternal, err)
	}

	err = s.storage.SaveTOTPSecret(ctx, TOTPSecret{
		ID:        uuid.New(),
		UserID:    userID,
		Sealed:    sealed,
		Algorithm: alg,
		Digits:    digits,
		Period:    period,
		CreatedAt: s.now(),
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("save totp secret: %w", err)
	}

	s.logger.InfoContext(ctx, "totp secret stored", logger.UserID(userID), slog.String("algorithm", alg.String()))
	s.record(ctx, "totp.secret_stored", nil,
		audit.WithUser(userID.String()),
		audit.WithMetadata("source", source),
		audit.WithMetadata("algorithm", alg.String()),
	)
	return nil
}

func (s *Service) requireUser(ctx context.Context, userID uuid.UUID) error {
	ok, err := s.storage.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

func (s *Service) notify(ctx context.Context, device Device, challenge Challenge) {
	if device.PushToken == "" {
		s.logger.DebugContext(ctx, "device has no push token, skipping notification", logger.DeviceID(device.ID))
		return
	}

	err := s.pusher.Push(ctx, push.Message{
		Token: device.PushToken,
		Title: "Sign-in request",
		Body:  "Approve the sign-in on this device.",
		Data: map[string]string{
			"challenge_id": challenge.ID.String(),
			"user_id":      challenge.UserID.String(),
		},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "push notification failed",
			logger.DeviceID(device.ID),
			logger.ChallengeID(challenge.ID),
			logger.Error(err),
		)
	}
}

// record writes an audit event. Audit failures never fail the operation.
func (s *Service) record(ctx context.Context, action string, cause error, opts ...audit.EventOption) {
	if s.auditor == nil {
		return
	}
	var err error
	if cause == nil {
		err = s.auditor.Log(ctx, action, opts...)
	} else {
		err = s.auditor.LogError(ctx, action, cause, append(opts, audit.WithResult(audit.ResultFailure))...)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to record audit event", slog.String("action", action), logger.Error(err))
	}
}

func (s *Service) recordRejection(ctx context.Context, challenge Challenge, deviceID uuid.UUID, cause error) {
	s.record(ctx, "challenge.rejected", cause,
		audit.WithUser(challenge.UserID.String()),
		audit.WithResource("challenge", challenge.ID.String()),
		audit.WithMetadata("device_id", deviceID.String()),
	)
}

// selectTrustedDevice picks the trusted device seen most recently. Ties go
// to the smallest device ID string.
func selectTrustedDevice(devices []Device) (Device, bool) {
	var best Device
	found := false
	for _, d := range devices {
		if !d.Trusted() {
			continue
		}
		if !found ||
			d.LastSeenAt.After(best.LastSeenAt) ||
			(d.LastSeenAt.Equal(best.LastSeenAt) && d.ID.String() < best.ID.String()) {
			best, found = d, true
		}
	}
	return best, found
}
