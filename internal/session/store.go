// Package session owns the authenticated identity: durable persistence
// (Store), the in-memory authority (Context), and local token inspection.
package session

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/renthub/renthub-go/internal/model"
)

const (
	tokenFile = "token"
	userFile  = "user.json"
)

// Store persists the access token and serialized user identity as two files
// under a private data directory, and nothing else. All failures mean
// "session unknown", never "session denied".
type Store struct {
	dir string
	log *slog.Logger
}

func NewStore(dir string) *Store {
	return &Store{dir: dir, log: slog.Default()}
}

// Save writes the token, then the user. The two writes are not atomic as a
// pair: a failure after the first leaves a torn state, which Load then
// reports as absent. Known limitation, not masked here.
func (s *Store) Save(sess model.Session) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, tokenFile), []byte(sess.Token), 0o600); err != nil {
		return err
	}
	buf, err := json.Marshal(sess.User)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, userFile), buf, 0o600)
}

// Load returns the last-saved session. ok is false when nothing was saved or
// the stored data cannot be decoded; corrupt data is treated as absent, not
// as an error. A non-nil error means real I/O trouble and the caller should
// treat the session as unknown.
func (s *Store) Load() (model.Session, bool, error) {
	tok, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if err != nil {
		if os.IsNotExist(err) {
			return model.Session{}, false, nil
		}
		return model.Session{}, false, err
	}

	raw, err := os.ReadFile(filepath.Join(s.dir, userFile))
	if err != nil {
		if os.IsNotExist(err) {
			return model.Session{}, false, nil
		}
		return model.Session{}, false, err
	}

	var user model.User
	if err := json.Unmarshal(raw, &user); err != nil {
		s.log.Warn("stored identity is unreadable, treating session as absent", "error", err)
		return model.Session{}, false, nil
	}

	token := strings.TrimSpace(string(tok))
	if token == "" {
		return model.Session{}, false, nil
	}
	return model.Session{Token: token, User: user}, true, nil
}

// Clear removes both keys. Clearing an already-empty store succeeds.
func (s *Store) Clear() error {
	for _, name := range []string{tokenFile, userFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
