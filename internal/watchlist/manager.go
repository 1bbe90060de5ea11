package watchlist

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bestchoice-b3/b3-daily/internal/contracts"
	"github.com/bestchoice-b3/b3-daily/pkg/logger"
)

// Manager keeps one running Controller per CPF
type Manager struct {
	ctx    context.Context
	store  contracts.StockStore
	quotes contracts.QuoteSource
	logger *logger.Logger
	opts   Options

	mu       sync.Mutex
	seq      uint64
	sessions map[string]*session
}

// session is one Manager entry. ready closes once Start has returned;
// c and err are read only after that.
type session struct {
	c     *Controller
	ready chan struct{}
	err   error
	used  uint64
}

func (s *session) started() bool {
	select {
	case <-s.ready:
		return s.err == nil
	default:
		return false
	}
}

// NewManager creates a manager. Sessions live until Close, until they are
// evicted to make room for another CPF, or until ctx ends.
func NewManager(ctx context.Context, st contracts.StockStore, quotes contracts.QuoteSource, log *logger.Logger, opts Options) *Manager {
	return &Manager{
		ctx:      ctx,
		store:    st,
		quotes:   quotes,
		logger:   log,
		opts:     opts,
		sessions: make(map[string]*session),
	}
}

// Open returns the controller of cpf, starting it on first use.
// The session outlives the caller and is bound to the manager context.
// Only callers of the same CPF wait while its subscription starts.
// With Options.MaxSessions set, a new CPF evicts the least recently used
// session nobody is streaming, or fails with ErrTooManySessions.
func (m *Manager) Open(cpf string) (*Controller, error) {
	cpf = strings.TrimSpace(cpf)
	if cpf == "" {
		return nil, ErrEmptyCPF
	}

	m.mu.Lock()
	m.seq++

	if s, ok := m.sessions[cpf]; ok {
		s.used = m.seq
		m.mu.Unlock()

		<-s.ready
		if s.err != nil {
			return nil, s.err
		}
		return s.c, nil
	}

	var evicted *session
	if m.opts.MaxSessions > 0 && len(m.sessions) >= m.opts.MaxSessions {
		victim, ok := m.idleLocked()
		if !ok {
			m.mu.Unlock()
			return nil, ErrTooManySessions
		}
		evicted = m.sessions[victim]
		delete(m.sessions, victim)
	}

	s := &session{
		c:     NewController(Session{CPF: cpf}, m.store, m.quotes, m.logger, m.opts),
		ready: make(chan struct{}),
		used:  m.seq,
	}
	m.sessions[cpf] = s
	m.mu.Unlock()

	if evicted != nil {
		m.logger.WithComponent("manager").WithCPF(evicted.c.Session().CPF).Info("Evicting idle watchlist session")
		evicted.c.Stop()
	}

	if err := s.c.Start(m.ctx); err != nil {
		s.err = fmt.Errorf("open session: %w", err)

		m.mu.Lock()
		if m.sessions[cpf] == s {
			delete(m.sessions, cpf)
		}
		m.mu.Unlock()
	}
	close(s.ready)

	if s.err != nil {
		return nil, s.err
	}
	return s.c, nil
}

// idleLocked picks the least recently used started session without watchers
func (m *Manager) idleLocked() (string, bool) {
	var (
		victim string
		oldest uint64
		found  bool
	)
	for cpf, s := range m.sessions {
		if !s.started() || s.c.watching() > 0 {
			continue
		}
		if !found || s.used < oldest {
			victim, oldest, found = cpf, s.used, true
		}
	}
	return victim, found
}

// Close stops the controller of cpf, if any
func (m *Manager) Close(cpf string) {
	m.mu.Lock()
	s, ok := m.sessions[cpf]
	delete(m.sessions, cpf)
	m.mu.Unlock()

	if !ok {
		return
	}
	<-s.ready
	if s.err == nil {
		s.c.Stop()
	}
}

// CloseAll stops every controller
func (m *Manager) CloseAll() {
	m.mu.Lock()
	cpfs := make([]string, 0, len(m.sessions))
	for cpf := range m.sessions {
		cpfs = append(cpfs, cpf)
	}
	m.mu.Unlock()

	for _, cpf := range cpfs {
		m.Close(cpf)
	}
}

// Sessions lists the CPFs with a running controller
func (m *Manager) Sessions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	cpfs := make([]string, 0, len(m.sessions))
	for cpf, s := range m.sessions {
		if s.started() {
			cpfs = append(cpfs, cpf)
		}
	}
	sort.Strings(cpfs)
	return cpfs
}

// Controllers returns the running controllers ordered by CPF
func (m *Manager) Controllers() []*Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Controller, 0, len(m.sessions))
	for _, s := range m.sessions {
		if s.started() {
			out = append(out, s.c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].session.CPF < out[j].session.CPF })
	return out
}
