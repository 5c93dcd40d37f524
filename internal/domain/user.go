package domain

// User is a registered account. Password and profile are stored as submitted.
type User struct {
	Username string
	Password string
	Profile  string
}
