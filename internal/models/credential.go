package models

// Credential is a registered account. Records are append-only: there is no
// update or delete path.
type Credential struct {
	Username string `json:"username"`
	Email    string `json:"email"`

	// Password is whatever the configured hasher produced. With the default
	// plain hasher this is the clear-text password, as in the web demo.
	Password string `json:"password"`

	RegistrationTime int64 `json:"registrationTime"`
}
