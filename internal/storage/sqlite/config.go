package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:salesdw.db?_pragma=foreign_keys(1)"
	//   "salesdw.db" (interpreted by the driver)
	DSN string
}
