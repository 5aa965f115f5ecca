package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/faheemho18/monefy-pwa-clone/internal/gitops"
)

// FileSink writes documents into a local directory, optionally committing
// each one to a git repository rooted there.
type FileSink struct {
	Dir    string
	Commit bool
	Author gitops.Author
	Log    zerolog.Logger
}

func (s *FileSink) Name() string { return "dir " + s.Dir }

func (s *FileSink) Put(_ context.Context, name string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating backup dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return fmt.Errorf("writing backup file: %w", err)
	}
	if !s.Commit {
		return nil
	}

	created, err := gitops.EnsureRepo(s.Dir)
	if err != nil {
		return err
	}
	if created {
		s.Log.Info().Str("dir", s.Dir).Msg("initialized backup repository")
	}
	hash, err := gitops.CommitFiles(s.Dir, "backup: "+name, s.Author, name)
	if err != nil {
		return err
	}
	s.Log.Info().Str("commit", hash).Str("file", name).Msg("committed backup")
	return nil
}

func (s *FileSink) Get(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		return nil, fmt.Errorf("reading backup file: %w", err)
	}
	return data, nil
}

func (s *FileSink) Latest(_ context.Context) (string, error) {
	matches, err := filepath.Glob(filepath.Join(s.Dir, "monefy-backup-*.json"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	sort.Strings(matches)
	return filepath.Base(matches[len(matches)-1]), nil
}

// ReadFile parses a backup document from path.
func ReadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("reading backup file: %w", err)
	}
	return ParseData(data)
}

// ParseData parses a document read from outside the store. A leading UTF-8
// byte order mark is ignored.
func ParseData(data []byte) (Document, error) {
	return Parse(strings.TrimPrefix(string(data), "\ufeff"))
}
