package auth

import (
	"errors"
	"strings"
)

// ErrNoBearerToken indicates the Authorization header is absent or carries no token.
var ErrNoBearerToken = errors.New("bearer token not provided")

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, error) {
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", ErrNoBearerToken
	}
	return fields[1], nil
}
