package logger

import (
	"log/slog"
	"strconv"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
// If id is nil, it returns an empty Attr.
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// DeviceID records the device identifier under the key "device_id".
// If id is nil, it returns an empty Attr.
func DeviceID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("device_id", id)
}

// ChallengeID records the challenge identifier under the key "challenge_id".
// If id is nil, it returns an empty Attr.
func ChallengeID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("challenge_id", id)
}

// RequestID records the request identifier under the key "request_id".
// If id is nil, it returns an empty Attr.
func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}

// TrustLevel records a device trust level under the key "trust_level".
func TrustLevel(level int) slog.Attr {
	return slog.Int("trust_level", level)
}

// AttestationScore records an attestation score under the key "attestation_score".
func AttestationScore(score int) slog.Attr {
	return slog.Int("attestation_score", score)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
