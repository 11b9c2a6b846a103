package server

import (
	"strings"
	"sync"
)

//Entity is anything replicated to connections which lives inside an execution context
type Entity interface {
	ContextName() string
}

//Partitioner decides which connections may observe which entities.
//A connection is always assigned to exactly one context (the shared template until it is moved into a match)
//and may additionally be mapped to the match context it is logically bound to.
type Partitioner struct {
	sync.RWMutex
	template string
	prefix string
	assigned map[string]string
	mapping map[string]string
}

func NewPartitioner(config *Config) *Partitioner {
	return &Partitioner{
		template: config.ContextConfig.TemplateName,
		prefix: config.ContextConfig.Prefix,
		assigned: make(map[string]string),
		mapping: make(map[string]string),
	}
}

//ContextName returns the context name used for given match id
func (p *Partitioner) ContextName(matchID string) string {
	return p.prefix + matchID
}

//RegisterConnection binds connection to the context. Connection stays on the template context until it is moved.
//Registering again replaces previous binding, so a connection never resolves into two contexts.
func (p *Partitioner) RegisterConnection(connID string, contextName string) {
	p.Lock()
	p.mapping[connID] = contextName
	if current, ok := p.assigned[connID]; !ok || current != contextName {
		p.assigned[connID] = p.template
	}
	p.Unlock()
}

//MoveConnection assigns connection into the context and binds it there in the same critical section
func (p *Partitioner) MoveConnection(connID string, contextName string) {
	p.Lock()
	p.assigned[connID] = contextName
	p.mapping[connID] = contextName
	p.Unlock()
}

//Unregister removes every binding of the connection, unknown connections are ignored
func (p *Partitioner) Unregister(connID string) {
	p.Lock()
	delete(p.assigned, connID)
	delete(p.mapping, connID)
	p.Unlock()
}

//UnregisterContext drops every connection bound to a destroyed context and returns how many were dropped
func (p *Partitioner) UnregisterContext(contextName string) int {
	p.Lock()
	defer p.Unlock()
	count := 0
	for connID, name := range p.mapping {
		if name == contextName {
			delete(p.mapping, connID)
			delete(p.assigned, connID)
			count++
		}
	}
	for connID, name := range p.assigned {
		if name == contextName {
			delete(p.assigned, connID)
			count++
		}
	}
	return count
}

func (p *Partitioner) CanObserve(entity Entity, connID string) bool {
	if entity == nil {
		return false
	}
	name := entity.ContextName()

	p.RLock()
	defer p.RUnlock()

	if assigned, ok := p.assigned[connID]; ok && assigned == name {
		return true
	}
	if strings.HasPrefix(name, p.prefix) {
		if mapped, ok := p.mapping[connID]; ok && mapped == name {
			return true
		}
	}
	return false
}

//ContextOf returns the context the connection is bound to
func (p *Partitioner) ContextOf(connID string) (string, bool) {
	p.RLock()
	defer p.RUnlock()
	name, ok := p.mapping[connID]
	return name, ok
}

func (p *Partitioner) Count() int {
	p.RLock()
	defer p.RUnlock()
	return len(p.mapping)
}
