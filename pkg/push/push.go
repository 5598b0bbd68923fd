package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Message is the payload posted to the push gateway.
type Message struct {
	Token string            `json:"token"`
	Title string            `json:"title,omitempty"`
	Body  string            `json:"body,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}

// Sender delivers a push message to one device.
type Sender interface {
	Push(ctx context.Context, msg Message) error
}

// NoopSender drops every message.
type NoopSender struct{}

func (NoopSender) Push(context.Context, Message) error { return nil }

// GatewaySender posts messages to an HTTP push gateway.
type GatewaySender struct {
	gatewayURL    string
	client        *http.Client
	timeout       time.Duration
	headers       map[string]string
	signingSecret string
	breaker       *Breaker
}

// NewGatewaySender validates gatewayURL and returns a sender for it.
func NewGatewaySender(gatewayURL string, opts ...Option) (*GatewaySender, error) {
	u, err := url.Parse(gatewayURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidURL)
	}

	s := &GatewaySender{
		gatewayURL: gatewayURL,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeout: 5 * time.Second,
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Push makes a single delivery attempt bounded by the sender timeout.
func (s *GatewaySender) Push(ctx context.Context, msg Message) error {
	if msg.Token == "" {
		return ErrMissingToken
	}

	if s.breaker != nil && !s.breaker.Allow() {
		return ErrCircuitOpen
	}

	err := s.deliver(ctx, msg)
	if s.breaker != nil {
		if err == nil {
			s.breaker.RecordSuccess()
		} else {
			s.breaker.RecordFailure()
		}
	}
	return err
}

func (s *GatewaySender) deliver(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return errors.Join(ErrDeliveryFailed, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, s.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return errors.Join(ErrDeliveryFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "devicekey-push/1.0")
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	if s.signingSecret != "" {
		sig, err := Sign(s.signingSecret, payload, time.Now())
		if err != nil {
			return errors.Join(ErrDeliveryFailed, err)
		}
		for k, v := range sig.Headers() {
			req.Header.Set(k, v)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return errors.Join(ErrTimeout, err)
		}
		return errors.Join(ErrDeliveryFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		detail := strings.ReplaceAll(strings.TrimSpace(string(body)), "\n", " ")
		return fmt.Errorf("%w: gateway returned status %d: %s", ErrDeliveryFailed, resp.StatusCode, detail)
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
	return nil
}
