package deviceauth

import "context"

// Attestor scores how much a device's attestation token can be trusted, 0..100.
type Attestor interface {
	Score(ctx context.Context, token string) (int, error)
}

// HeuristicAttestor scores tokens by length only. It does not verify
// anything and stands in until a platform attestation service is wired.
type HeuristicAttestor struct{}

func (HeuristicAttestor) Score(_ context.Context, token string) (int, error) {
	return ScoreAttestation(token), nil
}

// ScoreAttestation returns 0 for an empty token, 80 for 32+ characters,
// 50 for 8+ and 20 otherwise.
func ScoreAttestation(token string) int {
	switch n := len(token); {
	case n == 0:
		return 0
	case n >= 32:
		return 80
	case n >= 8:
		return 50
	default:
		return 20
	}
}
