package auth

// Identity is the authenticated operator as returned by /auth/verificar.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"nome"`
}
