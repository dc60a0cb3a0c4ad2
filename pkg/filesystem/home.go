package filesystem

import (
	"os"
	"os/user"
	"path/filepath"

	"github.com/pkg/errors"
)

// HomeDirectory is the cached path to the current user's home directory. We
// cache it because the underlying system call (getuid and friends, or the
// registry lookup on Windows) is surprisingly expensive to repeat.
var HomeDirectory string

// DefaultIndexDirectoryName is the name of the index directory created inside
// the user's home directory by the scan command when no explicit path is
// given.
const DefaultIndexDirectoryName = ".disksense64"

func init() {
	currentUser, err := user.Current()
	if err != nil {
		panic(errors.Wrap(err, "unable to lookup current user"))
	} else if currentUser.HomeDir == "" {
		panic(errors.New("unable to determine home directory"))
	}
	HomeDirectory = currentUser.HomeDir
}

// DefaultIndexPath returns the default on-disk location for the index,
// creating it (and its parent directories) if requested.
func DefaultIndexPath(create bool) (string, error) {
	path := filepath.Join(HomeDirectory, DefaultIndexDirectoryName)
	if create {
		if err := os.MkdirAll(path, 0700); err != nil {
			return "", errors.Wrap(err, "unable to create index directory")
		}
	}
	return path, nil
}
