package interpreter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Scratch writes each query to its own file under dir. Older deployments
// read the query from disk; the interpreter itself only uses stdin.
type Scratch struct {
	dir string
}

func NewScratch(dir string) (*Scratch, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return &Scratch{dir: dir}, nil
}

func (s *Scratch) Dir() string {
	return s.dir
}

// Write stores query in a uniquely named file. The returned cleanup removes
// it and is safe to call more than once.
func (s *Scratch) Write(query string) (string, func(), error) {
	path := filepath.Join(s.dir, fmt.Sprintf("zuery_query_%s.txt", uuid.NewString()))
	if err := os.WriteFile(path, []byte(query), 0o600); err != nil {
		return "", nil, fmt.Errorf("write scratch file: %w", err)
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("scratch file not removed")
		}
	}
	return path, cleanup, nil
}
