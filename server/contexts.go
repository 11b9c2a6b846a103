package server

import (
	"github.com/pkg/errors"
	"sync"
	"time"
)

//ContextAllocator hands out the isolated execution contexts matches run in
type ContextAllocator interface {
	Allocate(name string) error
	Release(name string)
}

//ContextHolder is the in process ContextAllocator, it caps how many match contexts can be alive at once
type ContextHolder struct {
	sync.Mutex
	contexts map[string]time.Time
	limit int
	stats *Stats
}

func NewContextHolder(config *Config, stats *Stats) *ContextHolder {
	return &ContextHolder{
		contexts: make(map[string]time.Time),
		limit: config.ContextConfig.MaxContexts,
		stats: stats,
	}
}

func (h *ContextHolder) Allocate(name string) error {
	h.Lock()
	defer h.Unlock()
	if _, ok := h.contexts[name]; ok {
		return errors.Wrapf(ErrContextAllocation, "context %s already allocated", name)
	}
	if h.limit > 0 && len(h.contexts) >= h.limit {
		return errors.Wrapf(ErrContextAllocation, "context limit %d reached", h.limit)
	}
	h.contexts[name] = time.Now()
	h.stats.SetActiveContexts(len(h.contexts))
	return nil
}

func (h *ContextHolder) Release(name string) {
	h.Lock()
	delete(h.contexts, name)
	h.stats.SetActiveContexts(len(h.contexts))
	h.Unlock()
}

func (h *ContextHolder) Exists(name string) bool {
	h.Lock()
	defer h.Unlock()
	_, ok := h.contexts[name]
	return ok
}
