// Package push delivers device notifications through an HTTP push gateway.
//
// The gateway (an FCM/APNs relay or any service with the same contract)
// receives a JSON Message over POST. Each Send makes exactly one attempt
// bounded by the configured timeout; callers that treat push as best-effort
// log the error and move on. A Breaker stops hammering a gateway that keeps
// failing so request latency stays bounded while it is down.
//
// Requests can be signed with HMAC-SHA256 over "timestamp.payload"; the
// gateway checks X-Push-Signature and X-Push-Timestamp with Verify, or
// mounts a Receiver which does that before handing over the Message.
//
// # Usage
//
//	sender, err := push.NewGatewaySender(cfg.GatewayURL,
//	    push.WithTimeout(cfg.Timeout),
//	    push.WithSigningSecret(cfg.SigningSecret),
//	    push.WithBreaker(push.NewBreaker(5, 2, 30*time.Second)),
//	)
//
//	err = sender.Push(ctx, push.Message{
//	    Token: device.PushToken,
//	    Title: "Sign-in request",
//	    Data:  map[string]string{"challenge_id": id},
//	})
//
// NoopSender satisfies the same contract when no gateway is configured.
package push
