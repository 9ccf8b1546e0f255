package service

import (
	"net/http"
	"strings"

	"autoparts-storefront/models"
)

// IdentityResolver reads the signed-in user from headers set by the identity proxy
type IdentityResolver struct {
	userIDHeader    string
	userEmailHeader string
}

// NewIdentityResolver creates a resolver for the given header names
func NewIdentityResolver(userIDHeader, userEmailHeader string) *IdentityResolver {
	return &IdentityResolver{userIDHeader: userIDHeader, userEmailHeader: userEmailHeader}
}

// FromRequest returns the user, or false when the request is anonymous
func (r *IdentityResolver) FromRequest(req *http.Request) (models.User, bool) {
	id := strings.TrimSpace(req.Header.Get(r.userIDHeader))
	if id == "" {
		return models.User{}, false
	}
	return models.User{
		ID:    id,
		Email: strings.TrimSpace(req.Header.Get(r.userEmailHeader)),
	}, true
}
