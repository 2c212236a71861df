package models

// Profile is the identity information kept for an authenticated user.
// All fields come from the identity provider's userinfo endpoint; Picture
// may be empty when the account has no avatar.
type Profile struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
}
