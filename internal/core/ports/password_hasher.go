package ports

// PasswordHasher abstracts one-way password hashing so the core never sees
// algorithm details.
type PasswordHasher interface {
	// Hash generates a salted hash from a password.
	Hash(password string) (string, error)

	// Verify reports whether password matches the stored hash. Malformed
	// stored hashes yield false, never an error.
	Verify(password, stored string) bool
}
