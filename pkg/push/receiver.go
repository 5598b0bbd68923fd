package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const maxMessageBytes = 64 << 10

// SignatureFromHeaders reads the signature headers set by a signing
// GatewaySender.
func SignatureFromHeaders(h http.Header) (Signature, error) {
	value := h.Get(HeaderSignature)
	if value == "" {
		return Signature{}, fmt.Errorf("%w: missing %s", ErrSignatureFailed, HeaderSignature)
	}
	ts, err := strconv.ParseInt(h.Get(HeaderTimestamp), 10, 64)
	if err != nil {
		return Signature{}, fmt.Errorf("%w: invalid %s", ErrSignatureFailed, HeaderTimestamp)
	}
	return Signature{Value: value, Timestamp: ts, ID: h.Get(HeaderID)}, nil
}

// Receiver is the gateway side of the push contract. It verifies the
// request signature against secret, decodes the Message and passes it to
// deliver. Responses: 202 on success, 401 on a bad signature, 400 on a
// malformed body, 502 when deliver fails.
type Receiver struct {
	secret  string
	maxAge  time.Duration
	now     func() time.Time
	deliver func(ctx context.Context, msg Message) error
}

// NewReceiver returns a Receiver. maxAge bounds signature age; zero
// disables the check.
func NewReceiver(secret string, maxAge time.Duration, deliver func(ctx context.Context, msg Message) error) (*Receiver, error) {
	if secret == "" {
		return nil, ErrInvalidSecret
	}
	if deliver == nil {
		return nil, errors.New("push receiver requires a deliver function")
	}
	return &Receiver{secret: secret, maxAge: maxAge, now: time.Now, deliver: deliver}, nil
}

func (rc *Receiver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxMessageBytes))
	if err != nil {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	sig, err := SignatureFromHeaders(r.Header)
	if err == nil {
		err = Verify(rc.secret, body, sig, rc.maxAge, rc.now())
	}
	if err != nil {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil || msg.Token == "" {
		http.Error(w, "invalid message", http.StatusBadRequest)
		return
	}

	if err := rc.deliver(r.Context(), msg); err != nil {
		http.Error(w, "delivery failed", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
