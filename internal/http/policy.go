package http

import "fmt"

const (
	PolicyNameClassic  = "classic"
	PolicyNameHardened = "hardened"
)

// Policy decides how anonymous access to protected pages is answered and
// which attributes the session cookie carries. A deployment runs exactly one.
type Policy struct {
	Name string
	// RejectAnonymous answers 401 (and clears the cookie) instead of
	// redirecting to /login.
	RejectAnonymous bool
	// HardenedCookie adds Path=/, HttpOnly and SameSite=Lax.
	HardenedCookie bool
	// AllowUpdate registers GET and POST /update.
	AllowUpdate bool
}

var (
	PolicyClassic = Policy{
		Name:            PolicyNameClassic,
		RejectAnonymous: true,
		AllowUpdate:     true,
	}
	PolicyHardened = Policy{
		Name:           PolicyNameHardened,
		HardenedCookie: true,
	}
)

// PolicyByName looks up one of the named policies.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case PolicyNameClassic:
		return PolicyClassic, nil
	case PolicyNameHardened:
		return PolicyHardened, nil
	default:
		return Policy{}, fmt.Errorf("unknown auth policy %q", name)
	}
}
