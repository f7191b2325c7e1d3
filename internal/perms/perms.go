// Package perms provides the file and directory permissions used when steamstat writes to disk.
package perms

import "os"

const (
	// RegularFile is used for the snapshot cache and log files.
	RegularFile os.FileMode = 0o644

	// SecureFile is used for the settings file, it carries the gateway API key.
	SecureFile os.FileMode = 0o600
)

const (
	// RegularDir is used for the cache directory.
	RegularDir os.FileMode = 0o755

	// SecureDir is used for the settings directory.
	SecureDir os.FileMode = 0o700
)
