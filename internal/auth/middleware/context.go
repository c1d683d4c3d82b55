package auth

import "context"

type subjectKey struct{}

// WithSubject records who made the request, the "sub" claim of its token.
func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, subjectKey{}, sub)
}

// Subject returns the authenticated subject, or "" and false on routes
// outside the bearer group.
func Subject(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(subjectKey{}).(string)
	return sub, ok && sub != ""
}
