package session

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// tokenFile is the on-disk record. Only the token is authoritative; the
// timestamp is informational.
type tokenFile struct {
	AccessToken string    `json:"access_token"`
	SavedAt     time.Time `json:"saved_at"`
}

// FilePersister keeps the credential in <dir>/<key>.json with 0600 permissions.
type FilePersister struct {
	dir string
	key string
}

// NewFilePersister returns a persister writing under dir, named after key.
func NewFilePersister(dir, key string) *FilePersister {
	return &FilePersister{dir: dir, key: key}
}

// Path is the file holding the credential.
func (p *FilePersister) Path() string { return filepath.Join(p.dir, p.key+".json") }

// Load reads the stored credential. A missing file is not an error.
func (p *FilePersister) Load(context.Context) (string, error) {
	b, err := os.ReadFile(p.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	return tf.AccessToken, nil
}

// Save writes the credential, replacing any previous file atomically.
func (p *FilePersister) Save(_ context.Context, credential string) error {
	if err := os.MkdirAll(p.dir, 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(tokenFile{AccessToken: credential, SavedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(p.dir, p.key+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p.Path())
}

// Remove deletes the credential file. A missing file is not an error.
func (p *FilePersister) Remove(context.Context) error {
	err := os.Remove(p.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
