package models

// User is the signed-in shopper as asserted by the identity provider
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// EmailPtr returns the email as a nullable JSON value
func (u User) EmailPtr() *string {
	if u.Email == "" {
		return nil
	}
	email := u.Email
	return &email
}
