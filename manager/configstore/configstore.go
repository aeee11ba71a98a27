// Package configstore polls a durably-stored Config row out of Postgres
// and reapplies it through Manager.SetConfiguration, for deployments
// that want the declarative configuration centralized in a database
// rather than distributed as a file per host. Optional: a Manager never
// wired to a Store simply keeps whatever configuration
// Manager.SetConfiguration/WatchConfigFile last installed. Grounded on
// examples/orderflow's pool.QueryRow/json.Unmarshal row-decoding idiom
// (order.go) and manager/watch.go's ticker-plus-stop-channel polling
// loop, substituting a database read for a file stat.
package configstore

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matgreaves/evtrace/evtspec"
	"github.com/matgreaves/evtrace/manager"
)

// DefaultPollInterval mirrors manager.watch's file-poll cadence.
const DefaultPollInterval = 2 * time.Second

// Store polls a single row of a configs table for the most recently
// written Config and reapplies it to a Manager on change.
type Store struct {
	pool     *pgxpool.Pool
	mgr      *manager.Manager
	table    string
	interval time.Duration

	stopCh chan struct{}
	once   sync.Once

	lastVersion int64
	reloadCount int64
	errorCount  int64
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(s *Store) { s.interval = d }
}

// WithTable overrides the default "evtrace_configs" table name.
func WithTable(name string) Option {
	return func(s *Store) { s.table = name }
}

// New builds a Store that polls pool for configuration changes and
// applies them to mgr.
func New(pool *pgxpool.Pool, mgr *manager.Manager, opts ...Option) *Store {
	s := &Store{
		pool:     pool,
		mgr:      mgr,
		table:    "evtrace_configs",
		interval: DefaultPollInterval,
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run polls until ctx is done or Stop is called. Intended to be run in
// its own goroutine.
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.poll(ctx)
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		}
	}
}

// Stop ends the polling loop. Safe to call more than once.
func (s *Store) Stop() {
	s.once.Do(func() { close(s.stopCh) })
}

// ReloadCount returns the number of configuration rows successfully
// applied since Run started.
func (s *Store) ReloadCount() int64 { return atomic.LoadInt64(&s.reloadCount) }

// ErrorCount returns the number of query/decode/apply failures
// encountered. Run keeps polling after an error.
func (s *Store) ErrorCount() int64 { return atomic.LoadInt64(&s.errorCount) }

func (s *Store) poll(ctx context.Context) {
	var version int64
	var body []byte
	err := s.pool.QueryRow(ctx,
		`SELECT version, body FROM `+s.table+` ORDER BY version DESC LIMIT 1`,
	).Scan(&version, &body)
	if err != nil {
		atomic.AddInt64(&s.errorCount, 1)
		return
	}
	if version <= atomic.LoadInt64(&s.lastVersion) {
		return
	}

	var cfg evtspec.Config
	if err := json.Unmarshal(body, &cfg); err != nil {
		atomic.AddInt64(&s.errorCount, 1)
		return
	}
	if err := s.mgr.SetConfiguration(cfg); err != nil {
		atomic.AddInt64(&s.errorCount, 1)
		return
	}

	atomic.StoreInt64(&s.lastVersion, version)
	atomic.AddInt64(&s.reloadCount, 1)
}
