package game

import (
	"cirello.io/goherokuname"
	"github.com/pkg/errors"
	"standoff/server"
	"sync"
	"time"
)

type Options struct {
	Clock Clock
	//0 leaves ticking to the caller
	TickInterval time.Duration
	NewRoller func() Roller
	NewMatchID func() string
	Recorder ResultRecorder
	Stats *server.Stats
}

//Registry owns every match of a game. Lock order is registry, match, partitioner.
type Registry struct {
	sync.RWMutex
	deps *matchDeps
	rules Rules
	logger *server.Logger

	newRoller func() Roller
	newMatchID func() string

	matches map[string]*Match
	//creation order, used for listing
	order []string
	//identity to match id
	members map[string]string
	activeCount int
}

func NewRegistry(game string, rules Rules, partitioner *server.Partitioner, contexts server.ContextAllocator, options Options, logger *server.Logger) *Registry {
	if options.Clock == nil {
		options.Clock = systemClock{}
	}
	if options.NewRoller == nil {
		options.NewRoller = newRoller
	}
	if options.NewMatchID == nil {
		options.NewMatchID = func() string {
			return goherokuname.HaikunateCustom("-", 4, "0123456789")
		}
	}

	r := &Registry{
		deps: &matchDeps{
			game: game,
			partitioner: partitioner,
			contexts: contexts,
			recorder: options.Recorder,
			stats: options.Stats,
			clock: options.Clock,
			tickInterval: options.TickInterval,
		},
		rules: rules,
		logger: logger,
		newRoller: options.NewRoller,
		newMatchID: options.NewMatchID,
		matches: make(map[string]*Match),
		members: make(map[string]string),
	}
	r.deps.finished = r.releaseDisconnected
	return r
}

func validMode(mode string) bool {
	return mode == server.MODE_CASUAL || mode == server.MODE_RANKED
}

//CreateMatch opens a lobby with the creator as its admin and first member
func (r *Registry) CreateMatch(mode string, creator Subscriber, connID string, options server.MatchOptions) (*Match, error) {
	if !validMode(mode) {
		return nil, errors.Wrapf(server.ErrInvalidMode, "%q", mode)
	}

	m, released, err := r.createMatch(mode, creator, connID, options)
	if released != nil {
		released.flush()
	}
	if err != nil {
		return nil, err
	}
	m.flush()
	return m, nil
}

func (r *Registry) createMatch(mode string, creator Subscriber, connID string, options server.MatchOptions) (*Match, *Match, error) {
	r.Lock()
	defer r.Unlock()

	released, err := r.releaseFinishedLocked(creator.UserID())
	if err != nil {
		return nil, released, err
	}

	id := options.MatchID
	if id == "" {
		id = r.newMatchID()
	}
	if _, ok := r.matches[id]; ok {
		return nil, released, errors.Wrapf(server.ErrAlreadyExists, "%s", id)
	}

	rules := r.rules
	rules.DamagePolicy = ParseDamagePolicy(options.DamagePolicy, rules.DamagePolicy)

	m := newMatch(id, mode, rules, r.deps, r.newRoller(), r.logger)
	if err := m.join(creator.UserID(), creator.Username(), creator, connID); err != nil {
		return nil, released, err
	}

	r.matches[id] = m
	r.order = append(r.order, id)
	r.members[creator.UserID()] = id
	r.activeCount++
	r.deps.stats.SetActiveMatches(r.activeCount)

	r.logger.Infow("Match created", "matchID", id, "mode", mode, "adminID", creator.UserID())
	return m, released, nil
}

//releaseFinishedLocked lets an identity leave the finished match it still belongs to
func (r *Registry) releaseFinishedLocked(userID string) (*Match, error) {
	matchID, ok := r.members[userID]
	if !ok {
		return nil, nil
	}
	m, ok := r.matches[matchID]
	if !ok {
		delete(r.members, userID)
		return nil, nil
	}
	if m.State() != MATCH_FINISHED {
		return nil, errors.Wrapf(server.ErrAlreadyInMatch, "%s is in match %s", userID, matchID)
	}
	return r.leaveLocked(userID)
}

//releaseDisconnected drops members that were not connected when the match ended.
//A finished match left without members is destroyed.
func (r *Registry) releaseDisconnected(m *Match) {
	r.Lock()
	for userID, matchID := range r.members {
		if matchID != m.id {
			continue
		}
		if p, ok := m.Participant(userID); ok && p.connected {
			continue
		}
		if _, err := r.leaveLocked(userID); err != nil {
			r.logger.Warnw("Releasing disconnected member failed", "userID", userID, "matchID", m.id, "error", err)
		}
	}
	r.Unlock()

	m.flush()
}

//GetOpenMatches lists joinable lobbies, empty mode lists all modes
func (r *Registry) GetOpenMatches(mode string) []server.MatchSummary {
	r.RLock()
	defer r.RUnlock()

	list := make([]server.MatchSummary, 0)
	for _, id := range r.order {
		m := r.matches[id]
		if mode != "" && m.mode != mode {
			continue
		}
		summary := m.Summary()
		if summary.State != server.MATCH_STATE_LOBBY {
			continue
		}
		list = append(list, summary)
	}
	return list
}

func (r *Registry) Get(matchID string) (*Match, bool) {
	r.RLock()
	defer r.RUnlock()
	m, ok := r.matches[matchID]
	return m, ok
}

//MatchOf returns the match the identity belongs to
func (r *Registry) MatchOf(userID string) (*Match, bool) {
	r.RLock()
	defer r.RUnlock()
	id, ok := r.members[userID]
	if !ok {
		return nil, false
	}
	m, ok := r.matches[id]
	return m, ok
}

func (r *Registry) ActiveMatchCount() int {
	r.RLock()
	defer r.RUnlock()
	return r.activeCount
}

func (r *Registry) DestroyMatch(matchID string) error {
	r.Lock()
	m, ok := r.matches[matchID]
	if ok {
		r.destroyLocked(matchID)
	}
	r.Unlock()

	if !ok {
		return errors.Wrapf(server.ErrMatchNotFound, "%s", matchID)
	}
	m.flush()
	return nil
}

func (r *Registry) destroyLocked(matchID string) {
	m, ok := r.matches[matchID]
	if !ok {
		return
	}
	delete(r.matches, matchID)
	for i, id := range r.order {
		if id == matchID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	for userID, id := range r.members {
		if id == matchID {
			delete(r.members, userID)
		}
	}
	r.activeCount--
	r.deps.stats.SetActiveMatches(r.activeCount)

	m.shutdown()
	r.deps.partitioner.UnregisterContext(m.contextName)
	r.deps.contexts.Release(m.contextName)

	r.logger.Infow("Match destroyed", "matchID", matchID, "active", r.activeCount)
}

func (r *Registry) JoinMatch(matchID string, sub Subscriber, connID string) (*Match, error) {
	m, released, err := r.joinMatch(matchID, sub, connID)
	if released != nil {
		released.flush()
	}
	if err != nil {
		return nil, err
	}
	m.flush()
	return m, nil
}

func (r *Registry) joinMatch(matchID string, sub Subscriber, connID string) (*Match, *Match, error) {
	r.Lock()
	defer r.Unlock()

	userID := sub.UserID()
	if current, ok := r.members[userID]; ok && current == matchID {
		m := r.matches[matchID]
		if m != nil && m.State() != MATCH_FINISHED {
			return m, nil, m.rebind(userID, sub, connID)
		}
	}

	released, err := r.releaseFinishedLocked(userID)
	if err != nil {
		return nil, released, err
	}

	m, ok := r.matches[matchID]
	if !ok {
		return nil, released, errors.Wrapf(server.ErrMatchNotFound, "%s", matchID)
	}
	if err := m.join(userID, sub.Username(), sub, connID); err != nil {
		return nil, released, err
	}
	r.members[userID] = matchID
	return m, released, nil
}

func (r *Registry) LeaveMatch(userID string) error {
	r.Lock()
	m, err := r.leaveLocked(userID)
	r.Unlock()

	if m != nil {
		m.flush()
	}
	return err
}

//leaveLocked removes the identity from its match and destroys the match once it is empty
func (r *Registry) leaveLocked(userID string) (*Match, error) {
	matchID, ok := r.members[userID]
	if !ok {
		return nil, errors.Wrapf(server.ErrNotMember, "%s is not in any match", userID)
	}
	delete(r.members, userID)

	m, ok := r.matches[matchID]
	if !ok {
		return nil, errors.Wrapf(server.ErrMatchNotFound, "%s", matchID)
	}

	empty, err := m.leave(userID)
	if empty {
		r.destroyLocked(matchID)
	}
	return m, err
}

func (r *Registry) Kick(adminID string, targetID string) error {
	r.Lock()
	m, err := r.kickLocked(adminID, targetID)
	r.Unlock()

	if m != nil {
		m.flush()
	}
	return err
}

func (r *Registry) kickLocked(adminID string, targetID string) (*Match, error) {
	matchID, ok := r.members[adminID]
	if !ok {
		return nil, errors.Wrapf(server.ErrNotMember, "%s is not in any match", adminID)
	}
	m, ok := r.matches[matchID]
	if !ok {
		return nil, errors.Wrapf(server.ErrMatchNotFound, "%s", matchID)
	}
	if err := m.kick(adminID, targetID); err != nil {
		return m, err
	}
	delete(r.members, targetID)
	return m, nil
}

func (r *Registry) ToggleReady(userID string) (server.MatchSummary, error) {
	m, ok := r.MatchOf(userID)
	if !ok {
		return server.MatchSummary{}, errors.Wrapf(server.ErrNotMember, "%s is not in any match", userID)
	}
	return m.ToggleReady(userID)
}

func (r *Registry) SubmitAction(userID string, req server.ActionRequest) error {
	m, ok := r.MatchOf(userID)
	if !ok {
		return errors.Wrapf(server.ErrNotMember, "%s is not in any match", userID)
	}
	return m.Submit(userID, req)
}

//Connect rebinds a returning identity to its unfinished match
func (r *Registry) Connect(sub Subscriber, connID string) (string, bool) {
	r.Lock()
	m, err := r.connectLocked(sub, connID)
	r.Unlock()

	if m == nil {
		return "", false
	}
	m.flush()
	if err != nil {
		r.logger.Warnw("Rejoin failed", "userID", sub.UserID(), "matchID", m.id, "error", err)
		return "", false
	}
	return m.id, true
}

func (r *Registry) connectLocked(sub Subscriber, connID string) (*Match, error) {
	matchID, ok := r.members[sub.UserID()]
	if !ok {
		return nil, nil
	}
	m, ok := r.matches[matchID]
	if !ok || m.State() == MATCH_FINISHED {
		return nil, nil
	}
	return m, m.rebind(sub.UserID(), sub, connID)
}

//Disconnect handles a closed connection. Connections which were already replaced are ignored.
func (r *Registry) Disconnect(userID string, connID string) {
	r.Lock()
	var m *Match
	if matchID, ok := r.members[userID]; ok {
		m = r.matches[matchID]
	}
	if m != nil && m.disconnect(userID, connID) {
		if _, err := r.leaveLocked(userID); err != nil {
			r.logger.Warnw("Leave on disconnect failed", "userID", userID, "error", err)
		}
	}
	r.Unlock()

	if m != nil {
		m.flush()
	}
}
