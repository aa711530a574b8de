package auth

import (
	"context"
	"errors"
	"strings"
)

// ErrUnknownToken is returned when a token does not resolve to a user.
var ErrUnknownToken = errors.New("unknown token")

// Resolver turns a bearer token into a user id.
type Resolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// StaticResolver resolves tokens from a fixed token -> user id map.
// Suitable for development and tests; production deployments plug in the
// identity service's client instead.
type StaticResolver map[string]string

func (r StaticResolver) Resolve(_ context.Context, token string) (string, error) {
	userID, ok := r[token]
	if !ok {
		return "", ErrUnknownToken
	}
	return userID, nil
}

// ParseStaticTokens parses "token:user,token:user" pairs, the format of
// the VITA_API_TOKENS variable.
func ParseStaticTokens(s string) StaticResolver {
	r := make(StaticResolver)
	for _, pair := range strings.Split(s, ",") {
		token, userID, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || token == "" || userID == "" {
			continue
		}
		r[token] = userID
	}
	return r
}
