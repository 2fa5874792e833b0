package auth

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultKeyID names the key built from a single configured secret.
const DefaultKeyID = "default"

// Keyring holds the HMAC signing keys by key id. Tokens are signed with the
// active key; any key still present in the ring verifies. Rotation is adding a
// new key, making it active, and dropping the old one once its tokens expire.
type Keyring struct {
	active string
	keys   map[string][]byte
}

// NewKeyring validates and copies keys. active must name one of them.
func NewKeyring(active string, keys map[string][]byte) (*Keyring, error) {
	if len(keys) == 0 {
		return nil, errors.New("keyring: at least one signing key is required")
	}
	copied := make(map[string][]byte, len(keys))
	for kid, secret := range keys {
		if strings.TrimSpace(kid) == "" {
			return nil, errors.New("keyring: empty key id")
		}
		if len(secret) == 0 {
			return nil, fmt.Errorf("keyring: key %q has an empty secret", kid)
		}
		copied[kid] = append([]byte(nil), secret...)
	}
	if _, ok := copied[active]; !ok {
		return nil, fmt.Errorf("keyring: active key %q is not in the ring", active)
	}
	return &Keyring{active: active, keys: copied}, nil
}

// SingleKey builds a keyring from one secret under DefaultKeyID.
func SingleKey(secret string) (*Keyring, error) {
	return NewKeyring(DefaultKeyID, map[string][]byte{DefaultKeyID: []byte(secret)})
}

// ParseKeys parses "kid=secret,kid2=secret2" into a key map.
func ParseKeys(raw string) (map[string][]byte, error) {
	keys := map[string][]byte{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		kid, secret, ok := strings.Cut(pair, "=")
		kid = strings.TrimSpace(kid)
		if !ok || kid == "" || secret == "" {
			return nil, fmt.Errorf("malformed key entry %q", pair)
		}
		if _, dup := keys[kid]; dup {
			return nil, fmt.Errorf("duplicate key id %q", kid)
		}
		keys[kid] = []byte(secret)
	}
	return keys, nil
}

// Active returns the id and secret new tokens are signed with.
func (k *Keyring) Active() (string, []byte) {
	return k.active, k.keys[k.active]
}

// Lookup returns the secret for kid.
func (k *Keyring) Lookup(kid string) ([]byte, bool) {
	secret, ok := k.keys[kid]
	return secret, ok
}
