package identity

import "strings"

// Identity is the verified caller of a request or connection.
type Identity struct {
	UserID string
	Token  string
}

// Verifier turns an access token into an Identity. claimedUserID is what the
// client sent next to the token; verifiers backed by signed tokens ignore it.
type Verifier interface {
	Verify(token, claimedUserID string) (Identity, error)
}

// Trusted accepts any non-empty token and takes the user id on faith.
// It stands in for the account service when no signing key is configured.
type Trusted struct{}

func (Trusted) Verify(token, claimedUserID string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrMissingToken
	}
	claimedUserID = strings.TrimSpace(claimedUserID)
	if claimedUserID == "" {
		return Identity{}, ErrMissingUserID
	}
	return Identity{UserID: claimedUserID, Token: token}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	if len(header) <= 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
