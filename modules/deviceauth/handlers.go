package deviceauth

import (
	"net/http"

	"github.com/dmitrymomot/devicekey/handler"
	authsvc "github.com/dmitrymomot/devicekey/svc/deviceauth"
)

func created(v any) handler.Response {
	return handler.JSON(v, handler.WithJSONStatus(http.StatusCreated))
}

func (a *API) ensureUser(ctx handler.Context, req EnsureUserRequest) handler.Response {
	if err := a.users.EnsureUser(ctx, req.ID); err != nil {
		return handler.Error(err)
	}
	return handler.Empty()
}

func (a *API) registerDevice(ctx handler.Context, req RegisterDeviceRequest) handler.Response {
	device, err := a.auth.RegisterDevice(ctx, authsvc.RegisterDeviceParams{
		UserID:           req.UserID,
		PublicKey:        req.PublicKeyDER,
		PushToken:        req.PushToken,
		ModelHash:        req.ModelHash,
		OSHash:           req.OSHash,
		AttestationToken: req.AttestationToken,
	})
	if err != nil {
		return handler.Error(err)
	}
	return created(newDeviceResponse(device))
}

func (a *API) beginAuth(ctx handler.Context, req BeginAuthRequest) handler.Response {
	challenge, err := a.auth.BeginAuth(ctx, req.UserID)
	if err != nil {
		return handler.Error(err)
	}
	return created(newChallengeResponse(challenge))
}

func (a *API) getChallenge(ctx handler.Context, req GetChallengeRequest) handler.Response {
	view, err := a.auth.GetChallenge(ctx, req.ID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(ChallengeViewResponse{
		ChallengeID: view.ID,
		UserID:      view.UserID,
		NonceBase64: view.NonceBase64,
	})
}

func (a *API) approve(ctx handler.Context, req ApproveRequest) handler.Response {
	if err := a.auth.Approve(ctx, req.ChallengeID, req.DeviceID, req.SignatureDER); err != nil {
		return handler.Error(err)
	}
	return handler.JSON(StatusResponse{Status: "approved"})
}

func (a *API) setupTOTP(ctx handler.Context, req SetupTOTPRequest) handler.Response {
	if err := a.auth.SetupTOTPSecret(ctx, req.UserID, req.SecretBase32); err != nil {
		return handler.Error(err)
	}
	return handler.EmptyWithStatus(http.StatusCreated)
}

func (a *API) verifyTOTP(ctx handler.Context, req VerifyTOTPRequest) handler.Response {
	if err := a.auth.VerifyTOTPCode(ctx, req.UserID, req.Code); err != nil {
		return handler.Error(err)
	}
	a.resetLimit(ctx, a.verifyLimiter, scopeTOTP, req.limitKey())
	return handler.JSON(StatusResponse{Status: "valid"})
}

func (a *API) importTOTP(ctx handler.Context, req ImportTOTPRequest) handler.Response {
	parsed, err := a.auth.ImportTOTPURI(ctx, req.UserID, req.URI)
	if err != nil {
		return handler.Error(err)
	}
	return created(ImportTOTPResponse{
		Issuer:    parsed.Issuer,
		Account:   parsed.Account,
		Algorithm: parsed.Algorithm.String(),
		Digits:    parsed.Digits,
		Period:    parsed.Period,
	})
}

func (a *API) enrollTOTP(ctx handler.Context, req EnrollTOTPRequest) handler.Response {
	enrollment, err := a.auth.EnrollTOTP(ctx, req.UserID, req.Issuer, req.Account)
	if err != nil {
		return handler.Error(err)
	}
	return created(EnrollTOTPResponse{
		URI:           enrollment.URI,
		QRCode:        enrollment.QRCode,
		RecoveryCodes: enrollment.RecoveryCodes,
	})
}

func (a *API) recoverTOTP(ctx handler.Context, req RecoverTOTPRequest) handler.Response {
	if err := a.auth.RedeemRecoveryCode(ctx, req.UserID, req.Code); err != nil {
		return handler.Error(err)
	}
	a.resetLimit(ctx, a.verifyLimiter, scopeTOTP, req.limitKey())
	return handler.JSON(StatusResponse{Status: "valid"})
}

func (a *API) listEvents(ctx handler.Context, req ListEventsRequest) handler.Response {
	limit := req.Limit
	if limit == 0 {
		limit = defaultEventLimit
	}
	events, err := a.auditReader.ListUserEvents(ctx, req.UserID.String(), limit)
	if err != nil {
		return handler.Error(err)
	}
	out := make([]EventResponse, len(events))
	for i, e := range events {
		out[i] = newEventResponse(e)
	}
	return handler.JSON(out)
}
