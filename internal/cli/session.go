package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/mesh-intelligence/dux/internal/logging"
	"github.com/mesh-intelligence/dux/internal/paths"
	"github.com/mesh-intelligence/dux/internal/transport"
	"github.com/mesh-intelligence/dux/pkg/dux"
	"github.com/mesh-intelligence/dux/pkg/sqlite"
	"github.com/mesh-intelligence/dux/pkg/store"
	"github.com/mesh-intelligence/dux/pkg/types"
)

// session wires the configured entities to a store backed by the snapshot
// cache. Every state change is written through to the cache.
type session struct {
	store       *store.Store
	cache       types.Cache
	unsubscribe func()
}

// openSession attaches the cache, registers every configured entity and
// restores their cached states.
func (a *app) openSession(stderr io.Writer) (*session, error) {
	cfg := a.cfg
	lc := logging.DefaultConfig()
	if cfg.LogLevel != "" {
		lc.Level = logging.ParseLevel(cfg.LogLevel)
	}
	if cfg.LogFormat != "" {
		lc.Format = logging.ParseFormat(cfg.LogFormat)
	}
	lc.Output = stderr
	log := logging.New(lc)

	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, cfg.DataDir)
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	cache := sqlite.NewCache()
	if err := cache.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dataDir}); err != nil {
		return nil, sysError(fmt.Errorf("attach cache: %w", err))
	}

	topts := []transport.Option{
		transport.WithTimeout(cfg.Timeout),
		transport.WithBearerToken(cfg.APIToken),
		transport.WithLogger(log),
	}
	for k, v := range cfg.Headers {
		topts = append(topts, transport.WithHeader(k, v))
	}
	client := transport.New(topts...)

	st := store.New(store.WithLogger(log))
	for _, name := range cfg.entityNames() {
		opts := cfg.Entities[name].options(name)
		opts.DataGetter = client
		opts.Logger = log
		e, err := dux.New(name, opts)
		if err != nil {
			cache.Detach()
			return nil, userError(fmt.Errorf("entity %s: %w", name, err))
		}
		if err := st.Register(e); err != nil {
			cache.Detach()
			return nil, sysError(err)
		}

		cached, err := cache.LoadState(name)
		switch {
		case errors.Is(err, types.ErrStateNotFound):
		case err != nil:
			cache.Detach()
			return nil, sysError(fmt.Errorf("load %s: %w", name, err))
		default:
			if err := st.Restore(name, cached); err != nil {
				cache.Detach()
				return nil, sysError(err)
			}
		}
	}

	s := &session{store: st, cache: cache}
	s.unsubscribe = st.Subscribe(func(name string, state types.State) {
		if err := cache.SaveState(name, state); err != nil {
			log.Error("save snapshot", "entity", name, "error", err)
		}
	})
	return s, nil
}

// close stops writing through and detaches the cache.
func (s *session) close() error {
	s.unsubscribe()
	return s.cache.Detach()
}

// entity returns the registered entity named name.
func (s *session) entity(name string) (*dux.Entity, error) {
	e, ok := s.store.Entity(name)
	if !ok {
		return nil, userError(fmt.Errorf("unknown entity %q", name))
	}
	return e, nil
}
