package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/osfs"
	"github.com/go-git/go-billy/v6/util"
	"gopkg.in/yaml.v3"
)

// ErrNoSession is returned by Load when nothing was saved
var ErrNoSession = errors.New("no saved session")

const sessionFile = "session.yaml"

// Store persists a Session
type Store interface {
	Save(s Session) error
	Load() (Session, error) // returns ErrNoSession if none exists
	Delete() error
}

type fileStore struct {
	fs billy.Filesystem
}

// NewStore returns a Store writing session.yaml at the root of fs
func NewStore(fs billy.Filesystem) Store {
	return &fileStore{fs: fs}
}

// NewDiskStore returns a Store under dir, or under the default data
// directory when dir is empty
func NewDiskStore(dir string) (Store, error) {
	if dir == "" {
		var err error
		dir, err = DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("while resolving data directory: %w", err)
		}
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("while creating data directory: %w", err)
	}
	return NewStore(osfs.New(dir)), nil
}

// DefaultDir is $XDG_DATA_HOME/parelha or ~/.local/share/parelha
func DefaultDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "parelha"), nil
}

// Save writes to a temporary file first and renames it over the old one
func (f *fileStore) Save(s Session) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	tmp := sessionFile + ".tmp"
	if err := util.WriteFile(f.fs, tmp, data, 0o600); err != nil {
		return err
	}
	if err := f.fs.Rename(tmp, sessionFile); err != nil {
		f.fs.Remove(tmp)
		return err
	}
	return nil
}

func (f *fileStore) Load() (Session, error) {
	data, err := util.ReadFile(f.fs, sessionFile)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, err
	}
	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("while parsing %s: %w", sessionFile, err)
	}
	if !s.Authenticated() {
		return Session{}, ErrNoSession
	}
	return s, nil
}

func (f *fileStore) Delete() error {
	err := f.fs.Remove(sessionFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
