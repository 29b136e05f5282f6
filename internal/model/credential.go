package model

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify returns (false, nil) on mismatch. An error means the stored hash is unusable.
	Verify(password, encoded string) (bool, error)
	NeedsUpgrade(encoded string) bool
}
