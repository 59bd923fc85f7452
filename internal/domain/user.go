package domain

type ContextKey string

const UserContextKey ContextKey = "user"

// User is the authenticated operator reconstructed from JWT claims. This
// service does not manage accounts; tokens are minted by the ops identity
// provider and only verified here.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
