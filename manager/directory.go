package manager

import (
	"os"
	"path/filepath"
)

// ResolveDefaultDirectory implements §6's default directory resolution:
// DATADIR, when set to an absolute path, yields DATADIR/logs; otherwise
// the default is ./logs resolved against the current working directory.
func ResolveDefaultDirectory() string {
	if p := os.Getenv("DATADIR"); p != "" && filepath.IsAbs(p) {
		return filepath.Join(p, "logs")
	}
	return filepath.Join(".", "logs")
}
