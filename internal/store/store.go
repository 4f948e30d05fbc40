// Package store keeps decoded weather files in memory between requests.
package store

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/epw-viewer/internal/cache"
	"github.com/couchcryptid/epw-viewer/internal/epw"
	"github.com/couchcryptid/epw-viewer/internal/observability"
	"github.com/couchcryptid/epw-viewer/internal/station"
)

// idLength is the number of hex digits of the content hash used as a file ID.
const idLength = 16

// Entry is one decoded file.
type Entry struct {
	ID       string
	File     *epw.File
	Place    station.Place
	LoadedAt time.Time
}

// Summary is the metadata of an Entry without its records.
type Summary struct {
	ID       string        `json:"id"`
	Location epw.Location  `json:"location"`
	Place    station.Place `json:"place"`
	Coverage epw.Coverage  `json:"coverage"`
	Headers  []string      `json:"headers"`
	LoadedAt time.Time     `json:"loaded_at"`
}

// Summary describes the entry.
func (e *Entry) Summary() Summary {
	return Summary{
		ID:       e.ID,
		Location: e.File.Location,
		Place:    e.Place,
		Coverage: e.File.Coverage(),
		Headers:  e.File.Headers,
		LoadedAt: e.LoadedAt,
	}
}

// Options configures a Store.
type Options struct {
	Size      int
	TTL       time.Duration
	AllowGaps bool
	// Geocoder names stations on load. Nil keeps the header's own name.
	Geocoder station.Geocoder
	Clock    clockwork.Clock
}

// Store decodes uploads and caches the result by content hash, so the same
// bytes uploaded twice are decoded once.
type Store struct {
	files    *cache.LRU[string, *Entry]
	geocoder station.Geocoder
	decode   []epw.Option
	clock    clockwork.Clock
	metrics  *observability.Metrics
	logger   *slog.Logger
	ready    atomic.Bool
}

// New creates an empty store.
func New(opts Options, metrics *observability.Metrics, logger *slog.Logger) *Store {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	var decode []epw.Option
	if opts.AllowGaps {
		decode = append(decode, epw.WithAllowGaps())
	}
	return &Store{
		files:    cache.New[string, *Entry](opts.Size, opts.TTL, clock),
		geocoder: opts.Geocoder,
		decode:   decode,
		clock:    clock,
		metrics:  metrics,
		logger:   logger,
	}
}

// Load reads r to the end, decodes it and stores the result. A file already
// in the store is returned without decoding it again.
func (s *Store) Load(ctx context.Context, r io.Reader) (*Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		s.metrics.DecodeErrors.WithLabelValues("io").Inc()
		return nil, fmt.Errorf("read upload: %w", err)
	}

	id := contentID(data)
	if e, ok := s.files.Get(id); ok {
		s.metrics.StoreLookups.WithLabelValues("hit").Inc()
		return e, nil
	}

	start := time.Now()
	f, err := epw.Decode(bytes.NewReader(data), s.decode...)
	if err != nil {
		s.metrics.DecodeErrors.WithLabelValues(ErrorKind(err)).Inc()
		return nil, err
	}
	s.metrics.DecodeDuration.Observe(time.Since(start).Seconds())
	s.metrics.FilesDecoded.Inc()
	s.metrics.RecordsDecoded.Add(float64(len(f.Records)))

	e := &Entry{
		ID:       id,
		File:     f,
		Place:    station.Resolve(ctx, f.Location, s.geocoder, s.logger),
		LoadedAt: s.clock.Now(),
	}
	s.files.Put(id, e)
	s.metrics.StoreEntries.Set(float64(s.files.Len()))

	cov := f.Coverage()
	s.logger.Info("epw file loaded",
		"id", id,
		"station", f.Location.StationID(),
		"place", e.Place.FormattedAddress,
		"records", cov.Records,
		"complete", cov.Complete,
	)
	return e, nil
}

// Get returns a stored entry.
func (s *Store) Get(id string) (*Entry, bool) {
	e, ok := s.files.Get(id)
	if ok {
		s.metrics.StoreLookups.WithLabelValues("hit").Inc()
	} else {
		s.metrics.StoreLookups.WithLabelValues("miss").Inc()
	}
	return e, ok
}

// List returns the stored entries, most recently used first.
func (s *Store) List() []*Entry {
	keys := s.files.Keys()
	out := make([]*Entry, 0, len(keys))
	for _, k := range keys {
		if e, ok := s.files.Peek(k); ok {
			out = append(out, e)
		}
	}
	return out
}

// Remove drops an entry. It reports whether the entry was present.
func (s *Store) Remove(id string) bool {
	ok := s.files.Remove(id)
	s.metrics.StoreEntries.Set(float64(s.files.Len()))
	return ok
}

// Run drops expired entries every interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	s.logger.Info("file store sweeper started", "interval", interval)
	s.ready.Store(true)
	defer s.ready.Store(false)

	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("file store sweeper stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			if n := s.files.Purge(); n > 0 {
				s.logger.Debug("expired files dropped", "count", n)
			}
			s.metrics.StoreEntries.Set(float64(s.files.Len()))
		}
	}
}

// CheckReadiness returns nil once the sweeper is running.
func (s *Store) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("file store sweeper is not running")
	}
	return nil
}

// ErrorKind classifies a decode error for metrics and API responses.
func ErrorKind(err error) string {
	var (
		headerErr   *epw.HeaderParseError
		recordErr   *epw.RecordParseError
		fieldErr    *epw.FieldTypeError
		sequenceErr *epw.SequenceError
	)
	switch {
	case errors.As(err, &headerErr):
		return "header"
	case errors.As(err, &recordErr):
		return "record"
	case errors.As(err, &fieldErr):
		return "field"
	case errors.As(err, &sequenceErr):
		return "sequence"
	case errors.Is(err, epw.ErrNoRecords):
		return "empty"
	default:
		return "io"
	}
}

func contentID(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:idLength]
}
