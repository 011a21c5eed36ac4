package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bep/debounce"
)

const DefaultAutoSaveDelay = time.Second

// AutoSaveService coalesces rapid writes to the same target into one write after a quiet period.
type AutoSaveService struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*pendingSave
	errs    []error
	wg      sync.WaitGroup
}

type pendingSave struct {
	debounced func(func())
	ctx       context.Context
	save      func(context.Context) error
}

func NewAutoSaveService(delay time.Duration) *AutoSaveService {
	if delay <= 0 {
		delay = DefaultAutoSaveDelay
	}
	return &AutoSaveService{delay: delay, pending: map[string]*pendingSave{}}
}

// Schedule runs save once no other Schedule call for key arrived within the delay.
// Only the last save passed for a key runs.
func (s *AutoSaveService) Schedule(ctx context.Context, key string, save func(context.Context) error) {
	s.mu.Lock()
	p, ok := s.pending[key]
	if !ok {
		p = &pendingSave{debounced: debounce.New(s.delay)}
		s.pending[key] = p
		s.wg.Add(1)
	}
	p.ctx = context.WithoutCancel(ctx)
	p.save = save
	s.mu.Unlock()

	p.debounced(func() { s.flush(key, p) })
}

// Wait blocks until every scheduled save has run and returns the failures
// collected since the previous Wait.
func (s *AutoSaveService) Wait() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	err := errors.Join(s.errs...)
	s.errs = nil
	return err
}

func (s *AutoSaveService) flush(key string, p *pendingSave) {
	s.mu.Lock()
	if s.pending[key] != p {
		// a later timer of an already flushed entry
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	ctx, save := p.ctx, p.save
	s.mu.Unlock()
	defer s.wg.Done()

	if err := save(ctx); err != nil {
		slog.Warn("autosave: write failed", "key", key, "error", err)
		s.mu.Lock()
		s.errs = append(s.errs, fmt.Errorf("autosave %s: %w", key, err))
		s.mu.Unlock()
	}
}
