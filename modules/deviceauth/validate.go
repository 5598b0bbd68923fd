package deviceauth

import "github.com/dmitrymomot/devicekey/pkg/validator"

const (
	maxFieldLen  = 256
	maxSecretLen = 1024
	maxURILen    = 2048

	defaultEventLimit = 50
	maxEventLimit     = 500
)

func (r EnsureUserRequest) Validate() error {
	return validator.Apply(validator.RequiredUUID("id", r.ID))
}

func (r RegisterDeviceRequest) Validate() error {
	return validator.Apply(
		validator.RequiredUUID("userID", r.UserID),
		validator.RequiredBytes("publicKeyDER", r.PublicKeyDER),
		validator.MaxLen("pushToken", r.PushToken, maxSecretLen),
		validator.MaxLen("modelHash", r.ModelHash, maxFieldLen),
		validator.MaxLen("osHash", r.OSHash, maxFieldLen),
		validator.MaxLen("attestationToken", r.AttestationToken, maxSecretLen),
	)
}

func (r BeginAuthRequest) Validate() error {
	return validator.Apply(validator.RequiredUUID("userID", r.UserID))
}

func (r GetChallengeRequest) Validate() error {
	return validator.Apply(validator.RequiredUUID("id", r.ID))
}

func (r ApproveRequest) Validate() error {
	return validator.Apply(
		validator.RequiredUUID("challengeID", r.ChallengeID),
		validator.RequiredUUID("deviceID", r.DeviceID),
		validator.RequiredBytes("signatureDER", r.SignatureDER),
	)
}

func (r SetupTOTPRequest) Validate() error {
	return validator.Apply(
		validator.RequiredUUID("userID", r.UserID),
		validator.Required("secretBase32", r.SecretBase32),
		validator.MaxLen("secretBase32", r.SecretBase32, maxSecretLen),
	)
}

func (r VerifyTOTPRequest) Validate() error {
	return validator.Apply(
		validator.RequiredUUID("userID", r.UserID),
		validator.Required("code", r.Code),
		validator.MaxLen("code", r.Code, maxFieldLen),
	)
}

func (r ImportTOTPRequest) Validate() error {
	return validator.Apply(
		validator.RequiredUUID("userID", r.UserID),
		validator.Required("uri", r.URI),
		validator.MaxLen("uri", r.URI, maxURILen),
	)
}

// Account is checked by the service so that a missing account maps to the
// same error whichever transport calls EnrollTOTP.
func (r EnrollTOTPRequest) Validate() error {
	return validator.Apply(
		validator.RequiredUUID("userID", r.UserID),
		validator.MaxLen("issuer", r.Issuer, maxFieldLen),
		validator.MaxLen("account", r.Account, maxFieldLen),
	)
}

func (r RecoverTOTPRequest) Validate() error {
	return validator.Apply(
		validator.RequiredUUID("userID", r.UserID),
		validator.Required("code", r.Code),
		validator.MaxLen("code", r.Code, maxFieldLen),
	)
}

func (r ListEventsRequest) Validate() error {
	return validator.Apply(
		validator.RequiredUUID("id", r.UserID),
		validator.InRange("limit", r.Limit, 0, maxEventLimit),
	)
}
