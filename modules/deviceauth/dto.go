package deviceauth

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/devicekey/pkg/audit"
	authsvc "github.com/dmitrymomot/devicekey/svc/deviceauth"
)

// Byte fields are []byte so encoding/json reads and writes standard base64.

type EnsureUserRequest struct {
	ID uuid.UUID `path:"id"`
}

type RegisterDeviceRequest struct {
	UserID           uuid.UUID `json:"userID"`
	PublicKeyDER     []byte    `json:"publicKeyDER"`
	PushToken        string    `json:"pushToken"`
	ModelHash        string    `json:"modelHash"`
	OSHash           string    `json:"osHash"`
	AttestationToken string    `json:"attestationToken"`
}

type DeviceResponse struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"userID"`
	PublicKeyDER     []byte    `json:"publicKeyDER"`
	PushToken        string    `json:"pushToken,omitempty"`
	ModelHash        string    `json:"modelHash,omitempty"`
	OSHash           string    `json:"osHash,omitempty"`
	TrustLevel       int       `json:"trustLevel"`
	AttestationScore int       `json:"attestationScore"`
	LastSeenAt       time.Time `json:"lastSeenAt"`
	CreatedAt        time.Time `json:"createdAt"`
}

func newDeviceResponse(d authsvc.Device) DeviceResponse {
	return DeviceResponse{
		ID:               d.ID,
		UserID:           d.UserID,
		PublicKeyDER:     d.PublicKey,
		PushToken:        d.PushToken,
		ModelHash:        d.ModelHash,
		OSHash:           d.OSHash,
		TrustLevel:       d.TrustLevel,
		AttestationScore: d.AttestationScore,
		LastSeenAt:       d.LastSeenAt,
		CreatedAt:        d.CreatedAt,
	}
}

type BeginAuthRequest struct {
	UserID uuid.UUID `json:"userID"`
}

func (r BeginAuthRequest) limitKey() string { return r.UserID.String() }

// ChallengeResponse is the Challenge record; nonce is standard base64.
type ChallengeResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userID"`
	DeviceID  uuid.UUID `json:"deviceID"`
	Nonce     []byte    `json:"nonce"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func newChallengeResponse(c authsvc.Challenge) ChallengeResponse {
	return ChallengeResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		DeviceID:  c.DeviceID,
		Nonce:     c.Nonce,
		ExpiresAt: c.ExpiresAt,
	}
}

type GetChallengeRequest struct {
	ID uuid.UUID `path:"id"`
}

type ChallengeViewResponse struct {
	ChallengeID uuid.UUID `json:"challengeID"`
	UserID      uuid.UUID `json:"userID"`
	NonceBase64 string    `json:"nonceBase64"`
}

type ApproveRequest struct {
	ChallengeID  uuid.UUID `json:"challengeID"`
	DeviceID     uuid.UUID `json:"deviceID"`
	SignatureDER []byte    `json:"signatureDER"`
}

func (r ApproveRequest) limitKey() string { return r.ChallengeID.String() }

type StatusResponse struct {
	Status string `json:"status"`
}

type SetupTOTPRequest struct {
	UserID       uuid.UUID `json:"userID"`
	SecretBase32 string    `json:"secretBase32"`
}

type VerifyTOTPRequest struct {
	UserID uuid.UUID `json:"userID"`
	Code   string    `json:"code"`
}

func (r VerifyTOTPRequest) limitKey() string { return r.UserID.String() }

type ImportTOTPRequest struct {
	UserID uuid.UUID `json:"userID"`
	URI    string    `json:"uri"`
}

type ImportTOTPResponse struct {
	Issuer    string `json:"issuer"`
	Account   string `json:"account"`
	Algorithm string `json:"algorithm"`
	Digits    int    `json:"digits"`
	Period    int    `json:"period"`
}

type EnrollTOTPRequest struct {
	UserID  uuid.UUID `json:"userID"`
	Issuer  string    `json:"issuer"`
	Account string    `json:"account"`
}

type EnrollTOTPResponse struct {
	URI           string   `json:"uri"`
	QRCode        string   `json:"qrCode"`
	RecoveryCodes []string `json:"recoveryCodes"`
}

type RecoverTOTPRequest struct {
	UserID uuid.UUID `json:"userID"`
	Code   string    `json:"code"`
}

func (r RecoverTOTPRequest) limitKey() string { return r.UserID.String() }

type ListEventsRequest struct {
	UserID uuid.UUID `path:"id"`
	Limit  int       `query:"limit"`
}

type EventResponse struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	Result     string         `json:"result"`
	Error      string         `json:"error,omitempty"`
	Resource   string         `json:"resource,omitempty"`
	ResourceID string         `json:"resourceID,omitempty"`
	RequestID  string         `json:"requestID,omitempty"`
	IP         string         `json:"ip,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func newEventResponse(e audit.Event) EventResponse {
	return EventResponse{
		ID:         e.ID,
		Action:     e.Action,
		Result:     string(e.Result),
		Error:      e.Error,
		Resource:   e.Resource,
		ResourceID: e.ResourceID,
		RequestID:  e.RequestID,
		IP:         e.IP,
		Metadata:   e.Metadata,
		CreatedAt:  e.CreatedAt,
	}
}
