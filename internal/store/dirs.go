package store

import (
	"os"
	"path/filepath"
)

const sqliteFileName = "objects.sqlite"

// DiscoverDir walks upward from start looking for an existing .arbor dir.
func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, ".arbor")
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// DefaultDir resolves the store dir: the nearest .arbor above the working
// directory, else a new .arbor in the working directory.
func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, ".arbor"), nil
}

// SQLitePath is the db file used by the sqlite backend inside a store dir.
func SQLitePath(dir string) string {
	return filepath.Join(dir, sqliteFileName)
}
