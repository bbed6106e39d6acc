package auth

import "context"

// Identity is who is calling. The zero value is a guest.
type Identity struct {
	Principal string
}

// Guest is the anonymous identity.
var Guest = Identity{}

// Authenticated reports whether a user is signed in.
func (i Identity) Authenticated() bool {
	return i.Principal != ""
}

type identityKey struct{}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored in ctx, or Guest.
func FromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityKey{}).(Identity); ok {
		return id
	}
	return Guest
}
