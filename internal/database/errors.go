package database

// IsUniqueViolation reports whether err was caused by a write that violated a
// uniqueness constraint, regardless of which backend produced it.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return isPostgresUniqueViolation(err) || isSQLiteUniqueViolation(err)
}
