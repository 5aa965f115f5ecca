package backup

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/faheemho18/monefy-pwa-clone/internal/logger"
)

// Sink stores encoded backup documents outside the record store.
type Sink interface {
	Name() string
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	// Latest returns the name of the newest document, or "" if there is none.
	Latest(ctx context.Context) (string, error)
}

// FileName is the object name a document taken at ts is published under.
// Names sort chronologically.
func FileName(ts time.Time) string {
	return "monefy-backup-" + ts.UTC().Format("20060102T150405Z") + ".json"
}

// Publish encodes doc once and writes it to every sink concurrently. It
// returns the published name and the first sink error.
func Publish(ctx context.Context, doc Document, sinks ...Sink) (string, error) {
	text, err := Encode(doc)
	if err != nil {
		return "", err
	}
	name := FileName(doc.Timestamp)
	data := []byte(text)

	log := logger.FromContext(ctx)
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range sinks {
		g.Go(func() error {
			if err := s.Put(ctx, name, data); err != nil {
				return fmt.Errorf("publishing to %s: %w", s.Name(), err)
			}
			log.Debug().Str("sink", s.Name()).Str("name", name).Int("bytes", len(data)).Msg("published backup")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return name, nil
}

// Fetch reads a document from a sink. An empty name means the latest one.
func Fetch(ctx context.Context, s Sink, name string) (string, error) {
	if name == "" {
		latest, err := s.Latest(ctx)
		if err != nil {
			return "", fmt.Errorf("finding latest backup in %s: %w", s.Name(), err)
		}
		if latest == "" {
			return "", fmt.Errorf("no backups in %s", s.Name())
		}
		name = latest
	}
	data, err := s.Get(ctx, name)
	if err != nil {
		return "", fmt.Errorf("reading %s from %s: %w", name, s.Name(), err)
	}
	return string(data), nil
}
