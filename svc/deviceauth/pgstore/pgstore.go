package pgstore

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/devicekey/pkg/pg"
	"github.com/dmitrymomot/devicekey/pkg/totp"
	"github.com/dmitrymomot/devicekey/svc/deviceauth"
)

// Migrations holds the goose migrations for the tables used by Storage.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations.
const MigrationsDir = "migrations"

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Storage implements deviceauth.Storage on PostgreSQL.
type Storage struct {
	db querier
}

var _ deviceauth.Storage = (*Storage)(nil)

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{db: pool}
}

// EnsureUser inserts userID if it is not present yet.
func (s *Storage) EnsureUser(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Exec(ctx, `INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, userID)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

func (s *Storage) UserExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return exists, nil
}

func (s *Storage) CreateDevice(ctx context.Context, d deviceauth.Device) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO devices (id, user_id, public_key, push_token, model_hash, os_hash,
			trust_level, attestation_score, last_seen_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		d.ID, d.UserID, d.PublicKey, d.PushToken, d.ModelHash, d.OSHash,
		d.TrustLevel, d.AttestationScore, d.LastSeenAt, d.CreatedAt,
	)
	if err != nil {
		if pg.IsForeignKeyViolationError(err) {
			return deviceauth.ErrUserNotFound
		}
		return fmt.Errorf("insert device: %w", err)
	}
	return nil
}

const deviceColumns = `id, user_id, public_key, push_token, model_hash, os_hash,
	trust_level, attestation_score, last_seen_at, created_at`

func scanDevice(row pgx.Row) (deviceauth.Device, error) {
	var d deviceauth.Device
	err := row.Scan(&d.ID, &d.UserID, &d.PublicKey, &d.PushToken, &d.ModelHash, &d.OSHash,
		&d.TrustLevel, &d.AttestationScore, &d.LastSeenAt, &d.CreatedAt)
	return d, err
}

func (s *Storage) GetDevice(ctx context.Context, deviceID uuid.UUID) (deviceauth.Device, error) {
	d, err := scanDevice(s.db.QueryRow(ctx, `SELECT `+deviceColumns+` FROM devices WHERE id = $1`, deviceID))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return deviceauth.Device{}, deviceauth.ErrDeviceNotFound
		}
		return deviceauth.Device{}, fmt.Errorf("get device: %w", err)
	}
	return d, nil
}

func (s *Storage) ListUserDevices(ctx context.Context, userID uuid.UUID) ([]deviceauth.Device, error) {
	rows, err := s.db.Query(ctx, `SELECT `+deviceColumns+` FROM devices WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	devices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (deviceauth.Device, error) {
		return scanDevice(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return devices, nil
}

func (s *Storage) TouchDevice(ctx context.Context, deviceID uuid.UUID, at time.Time) error {
	tag, err := s.db.Exec(ctx, `UPDATE devices SET last_seen_at = $2 WHERE id = $1`, deviceID, at)
	if err != nil {
		return fmt.Errorf("touch device: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return deviceauth.ErrDeviceNotFound
	}
	return nil
}

func (s *Storage) CreateChallenge(ctx context.Context, c deviceauth.Challenge) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO challenges (id, user_id, device_id, nonce, created_at, expires_at, used)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.UserID, c.DeviceID, c.Nonce, c.CreatedAt, c.ExpiresAt, c.Used,
	)
	if err != nil {
		return fmt.Errorf("insert challenge: %w", err)
	}
	return nil
}

func (s *Storage) GetChallenge(ctx context.Context, challengeID uuid.UUID) (deviceauth.Challenge, error) {
	var c deviceauth.Challenge
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, device_id, nonce, created_at, expires_at, used
		FROM challenges WHERE id = $1`, challengeID,
	).Scan(&c.ID, &c.UserID, &c.DeviceID, &c.Nonce, &c.CreatedAt, &c.ExpiresAt, &c.Used)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return deviceauth.Challenge{}, deviceauth.ErrChallengeNotFound
		}
		return deviceauth.Challenge{}, fmt.Errorf("get challenge: %w", err)
	}
	return c, nil
}

// ConsumeChallenge flips used in a single conditional UPDATE, so row locking
// in PostgreSQL lets exactly one concurrent caller through.
func (s *Storage) ConsumeChallenge(ctx context.Context, challengeID uuid.UUID, at time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE challenges SET used = TRUE
		WHERE id = $1 AND used = FALSE AND expires_at > $2`, challengeID, at)
	if err != nil {
		return fmt.Errorf("consume challenge: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM challenges WHERE id = $1)`, challengeID).Scan(&exists); err != nil {
		return fmt.Errorf("consume challenge: %w", err)
	}
	if !exists {
		return deviceauth.ErrChallengeNotFound
	}
	return deviceauth.ErrChallengeGone
}

// SaveTOTPSecret upserts on user_id; the previous secret is replaced.
func (s *Storage) SaveTOTPSecret(ctx context.Context, sec deviceauth.TOTPSecret) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO totp_secrets (id, user_id, sealed, algorithm, digits, period, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			id = EXCLUDED.id,
			sealed = EXCLUDED.sealed,
			algorithm = EXCLUDED.algorithm,
			digits = EXCLUDED.digits,
			period = EXCLUDED.period,
			created_at = EXCLUDED.created_at`,
		sec.ID, sec.UserID, sec.Sealed, string(sec.Algorithm), sec.Digits, sec.Period, sec.CreatedAt,
	)
	if err != nil {
		if pg.IsForeignKeyViolationError(err) {
			return deviceauth.ErrUserNotFound
		}
		return fmt.Errorf("save totp secret: %w", err)
	}
	return nil
}

func (s *Storage) GetTOTPSecret(ctx context.Context, userID uuid.UUID) (deviceauth.TOTPSecret, error) {
	var (
		sec       deviceauth.TOTPSecret
		algorithm string
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, sealed, algorithm, digits, period, created_at
		FROM totp_secrets WHERE user_id = $1`, userID,
	).Scan(&sec.ID, &sec.UserID, &sec.Sealed, &algorithm, &sec.Digits, &sec.Period, &sec.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return deviceauth.TOTPSecret{}, deviceauth.ErrSecretNotFound
		}
		return deviceauth.TOTPSecret{}, fmt.Errorf("get totp secret: %w", err)
	}

	alg, ok := totp.ParseAlgorithm(algorithm)
	if !ok {
		return deviceauth.TOTPSecret{}, errors.Join(deviceauth.ErrInternal, fmt.Errorf("unknown stored algorithm %q", algorithm))
	}
	sec.Algorithm = alg
	return sec, nil
}

// SaveRecoveryCodes deletes the user's codes and inserts hashes in one
// statement.
func (s *Storage) SaveRecoveryCodes(ctx context.Context, userID uuid.UUID, hashes []string) error {
	if hashes == nil {
		hashes = []string{}
	}
	_, err := s.db.Exec(ctx, `
		WITH cleared AS (
			DELETE FROM totp_recovery_codes WHERE user_id = $1
		)
		INSERT INTO totp_recovery_codes (user_id, code_hash)
		SELECT $1, h FROM unnest($2::text[]) AS h`,
		userID, hashes,
	)
	if err != nil {
		if pg.IsForeignKeyViolationError(err) {
			return deviceauth.ErrUserNotFound
		}
		return fmt.Errorf("save recovery codes: %w", err)
	}
	return nil
}

func (s *Storage) ListRecoveryCodes(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT code_hash FROM totp_recovery_codes WHERE user_id = $1 ORDER BY code_hash`, userID)
	if err != nil {
		return nil, fmt.Errorf("list recovery codes: %w", err)
	}
	hashes, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list recovery codes: %w", err)
	}
	return hashes, nil
}

// ConsumeRecoveryCode deletes the hash; the row lock lets one caller win.
func (s *Storage) ConsumeRecoveryCode(ctx context.Context, userID uuid.UUID, hash string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM totp_recovery_codes WHERE user_id = $1 AND code_hash = $2`, userID, hash)
	if err != nil {
		return fmt.Errorf("consume recovery code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return deviceauth.ErrRecoveryCodeNotFound
	}
	return nil
}

// DeleteExpiredChallenges removes challenges that expired before cutoff.
// Expiry is enforced on read, so this only reclaims space.
func (s *Storage) DeleteExpiredChallenges(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM challenges WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired challenges: %w", err)
	}
	return tag.RowsAffected(), nil
}
