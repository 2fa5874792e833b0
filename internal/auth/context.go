package auth

import "context"

type ctxKey string

const claimKey ctxKey = "claim"

// WithClaim returns a copy of ctx carrying the authenticated caller.
func WithClaim(ctx context.Context, claim Claim) context.Context {
	return context.WithValue(ctx, claimKey, claim)
}

// ClaimFromContext returns the caller attached by WithClaim, if any.
func ClaimFromContext(ctx context.Context) (Claim, bool) {
	claim, ok := ctx.Value(claimKey).(Claim)
	return claim, ok
}
