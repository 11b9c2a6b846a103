package game

import (
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"standoff/model"
	"standoff/server"
	"sync"
	"time"
)

type MatchState int

const (
	MATCH_LOBBY MatchState = iota
	MATCH_IN_PROGRESS
	MATCH_FINISHED
)

func (s MatchState) String() string {
	switch s {
	case MATCH_IN_PROGRESS:
		return server.MATCH_STATE_IN_PROGRESS
	case MATCH_FINISHED:
		return server.MATCH_STATE_FINISHED
	}
	return server.MATCH_STATE_LOBBY
}

//ResultRecorder receives the result of every finished match. It is called without any lock held.
type ResultRecorder interface {
	RecordMatch(result *model.MatchResult)
}

//matchDeps are shared by every match of a registry
type matchDeps struct {
	game string
	partitioner *server.Partitioner
	contexts server.ContextAllocator
	recorder ResultRecorder
	stats *server.Stats
	clock Clock
	tickInterval time.Duration
	//finished runs once the result of a match has been handed over, without any lock held
	finished func(m *Match)
}

type delivery struct {
	sub Subscriber
	notification *server.Notification
}

type Match struct {
	mu sync.Mutex
	//flushMu keeps deliveries in the order they were queued
	flushMu sync.Mutex

	id string
	mode string
	contextName string
	rules Rules
	deps *matchDeps
	logger *server.Logger

	state MatchState
	adminID string
	roster []*Participant
	departed []*Participant
	joinSeq int
	started *atomic.Uint32

	turn turnState
	roles roleState
	roller Roller

	outbox []delivery
	result *model.MatchResult

	createdAt time.Time
	startedAt time.Time

	stop chan struct{}
	stopOnce sync.Once
}

func newMatch(id string, mode string, rules Rules, deps *matchDeps, roller Roller, logger *server.Logger) *Match {
	return &Match{
		id: id,
		mode: mode,
		contextName: deps.partitioner.ContextName(id),
		rules: rules,
		deps: deps,
		logger: logger.With("matchID", id),
		state: MATCH_LOBBY,
		started: atomic.NewUint32(0),
		turn: newTurnState(),
		roles: newRoleState(),
		roller: roller,
		createdAt: deps.clock.Now(),
		stop: make(chan struct{}),
	}
}

func (m *Match) ID() string {
	return m.id
}

func (m *Match) Mode() string {
	return m.mode
}

//ContextName is the execution context every entity of this match belongs to
func (m *Match) ContextName() string {
	return m.contextName
}

func (m *Match) State() MatchState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Match) AdminID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.adminID
}

func (m *Match) Summary() server.MatchSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summaryLocked()
}

//Participant returns a copy of the participant state
func (m *Match) Participant(id string) (Participant, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, _ := m.find(id)
	if p == nil {
		return Participant{}, false
	}
	return *p, true
}

func (m *Match) summaryLocked() server.MatchSummary {
	players := make([]server.ParticipantView, 0, len(m.roster))
	for _, p := range m.roster {
		players = append(players, p.view(m.adminID))
	}
	return server.MatchSummary{
		ID: m.id,
		Game: m.deps.game,
		Mode: m.mode,
		State: m.state.String(),
		AdminID: m.adminID,
		Round: m.turn.round,
		MaxPlayers: m.rules.MaxPlayers,
		DamagePolicy: m.rules.DamagePolicy.String(),
		Players: players,
		CreatedAt: m.createdAt.Unix(),
	}
}

func (m *Match) find(id string) (*Participant, int) {
	for i, p := range m.roster {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

func (m *Match) join(id string, name string, sub Subscriber, connID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, _ := m.find(id); p != nil {
		return errors.Wrapf(server.ErrAlreadyInMatch, "%s is already in match %s", id, m.id)
	}
	if m.state != MATCH_LOBBY {
		return errors.Wrapf(server.ErrAlreadyStarted, "match %s", m.id)
	}
	if m.rules.MaxPlayers > 0 && len(m.roster) >= m.rules.MaxPlayers {
		return errors.Wrapf(server.ErrMatchFull, "match %s has %d players", m.id, len(m.roster))
	}

	m.joinSeq++
	p := newParticipant(id, name, sub, connID, m.joinSeq)
	m.roster = append(m.roster, p)
	if m.adminID == "" {
		m.adminID = id
	}
	if connID != "" {
		m.deps.partitioner.RegisterConnection(connID, m.contextName)
	}

	m.notifyRosterLocked()
	m.logger.Infow("Participant joined", "participantID", id, "count", len(m.roster))
	return nil
}

//leave removes the participant and reports whether roster became empty
func (m *Match) leave(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.removeLocked(id); err != nil {
		return len(m.roster) == 0, err
	}
	return len(m.roster) == 0, nil
}

func (m *Match) kick(adminID string, targetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.adminID != adminID {
		return errors.Wrapf(server.ErrNotAdmin, "%s cannot kick from match %s", adminID, m.id)
	}
	if adminID == targetID {
		return errors.Wrap(server.ErrNotAllowedSelf, "admin cannot kick itself")
	}
	target, _ := m.find(targetID)
	if target == nil {
		return errors.Wrapf(server.ErrNotMember, "%s is not in match %s", targetID, m.id)
	}

	m.notifyLocked(target, &server.Notification{Kind: server.NOTIFICATION_KICKED, MatchID: m.id, ParticipantID: targetID})
	return m.removeLocked(targetID)
}

//removeLocked takes the participant out of the roster permanently.
//While in progress the participant is also taken out of the running round.
func (m *Match) removeLocked(id string) error {
	p, idx := m.find(id)
	if p == nil {
		return errors.Wrapf(server.ErrNotMember, "%s is not in match %s", id, m.id)
	}

	m.roster = append(m.roster[:idx], m.roster[idx+1:]...)
	if p.connID != "" {
		m.deps.partitioner.Unregister(p.connID)
	}
	p.sub = nil
	p.connected = false

	if m.state == MATCH_IN_PROGRESS {
		p.Alive = false
		m.departed = append(m.departed, p)
		m.turn.drop(id)
		if p.HoldsRole {
			m.revokeRoleLocked(p)
		}
	}

	if m.adminID == id {
		m.adminID = ""
		if len(m.roster) > 0 {
			//roster keeps join order so the first remaining member joined earliest
			m.adminID = m.roster[0].ID
			m.logger.Infow("Admin reassigned", "from", id, "to", m.adminID)
		}
	}

	m.logger.Infow("Participant left", "participantID", id, "count", len(m.roster))

	if len(m.roster) == 0 {
		return nil
	}

	m.notifyRosterLocked()

	if m.state == MATCH_IN_PROGRESS {
		now := m.deps.clock.Now()
		if m.turn.phase == PHASE_COLLECTING && m.allSubmittedLocked() {
			m.resolveLocked(now)
		} else if m.turn.phase != PHASE_MATCH_OVER {
			m.checkTerminationLocked(now)
		}
	}
	return nil
}

func (m *Match) ToggleReady(id string) (server.MatchSummary, error) {
	summary, err := m.toggleReady(id)
	m.flush()
	return summary, err
}

func (m *Match) toggleReady(id string) (server.MatchSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, _ := m.find(id)
	if p == nil {
		return server.MatchSummary{}, errors.Wrapf(server.ErrNotMember, "%s is not in match %s", id, m.id)
	}
	if m.state != MATCH_LOBBY {
		return server.MatchSummary{}, errors.Wrapf(server.ErrAlreadyStarted, "match %s", m.id)
	}

	p.Ready = !p.Ready
	m.notifyRosterLocked()
	m.checkAllReadyLocked()

	return m.summaryLocked(), nil
}

//CheckAllReady reports whether every member is ready and starts the match if so
func (m *Match) CheckAllReady() bool {
	m.mu.Lock()
	ready := m.checkAllReadyLocked()
	m.mu.Unlock()
	m.flush()
	return ready
}

func (m *Match) checkAllReadyLocked() bool {
	if len(m.roster) == 0 || len(m.roster) < m.rules.MinPlayers {
		return false
	}
	for _, p := range m.roster {
		if !p.Ready {
			return false
		}
	}
	if m.state == MATCH_LOBBY {
		m.startLocked()
	}
	return true
}

func (m *Match) startLocked() {
	if !m.started.CAS(0, 1) {
		return
	}

	if err := m.deps.contexts.Allocate(m.contextName); err != nil {
		m.started.Store(0)
		m.logger.Errorw("Match could not be started", "error", err)
		m.notifyAllLocked(&server.Notification{Kind: server.NOTIFICATION_MATCH_START_FAILED, Reason: err.Error()})
		return
	}

	now := m.deps.clock.Now()
	m.state = MATCH_IN_PROGRESS
	m.startedAt = now
	m.roles = newRoleState()

	for _, p := range m.roster {
		p.Alive = true
		p.Health = m.rules.StartingHealth
		p.Ammo = m.rules.StartingAmmo
		p.Covering = false
		p.HoldsRole = false
		p.Stats = model.ParticipantStats{}
		if p.connected && p.connID != "" {
			m.deps.partitioner.MoveConnection(p.connID, m.contextName)
		}
	}

	summary := m.summaryLocked()
	m.notifyAllLocked(&server.Notification{Kind: server.NOTIFICATION_MATCH_STARTED, Match: &summary})
	m.logger.Infow("Match started", "players", len(m.roster), "damagePolicy", m.rules.DamagePolicy.String())

	m.startRoundLocked(now)

	if m.deps.tickInterval > 0 {
		go m.run()
	}
}

//rebind attaches a new connection to an existing participant and keeps the whole game state
func (m *Match) rebind(id string, sub Subscriber, connID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, _ := m.find(id)
	if p == nil {
		return errors.Wrapf(server.ErrNotMember, "%s is not in match %s", id, m.id)
	}
	if m.state == MATCH_FINISHED {
		return errors.Wrapf(server.ErrNotMember, "match %s is finished", m.id)
	}

	if p.connID != "" && p.connID != connID {
		m.deps.partitioner.Unregister(p.connID)
	}
	p.sub = sub
	p.connID = connID
	p.connected = true

	if m.state == MATCH_IN_PROGRESS {
		m.deps.partitioner.MoveConnection(connID, m.contextName)
	} else {
		m.deps.partitioner.RegisterConnection(connID, m.contextName)
	}

	summary := m.summaryLocked()
	m.notifyLocked(p, &server.Notification{
		Kind: server.NOTIFICATION_REJOINED,
		Round: m.turn.round,
		Deadline: m.turn.deadlineMillis(),
		Match: &summary,
	})
	m.notifyRosterLocked()
	m.logger.Infow("Participant rebound to new connection", "participantID", id)
	return nil
}

//disconnect marks the participant as transiently gone.
//It returns true when the caller should treat the disconnect as a leave.
func (m *Match) disconnect(id string, connID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, _ := m.find(id)
	if p == nil || p.connID != connID {
		//a newer connection took over already
		return false
	}
	if m.state != MATCH_IN_PROGRESS {
		return true
	}

	m.deps.partitioner.Unregister(connID)
	p.sub = nil
	p.connected = false
	m.notifyRosterLocked()
	m.logger.Infow("Participant disconnected", "participantID", id)

	//the rest of the round resolves without them
	if m.turn.phase == PHASE_COLLECTING {
		m.turn.drop(id)
		if m.allSubmittedLocked() {
			m.resolveLocked(m.deps.clock.Now())
		}
	}
	return false
}

func (m *Match) notifyRosterLocked() {
	summary := m.summaryLocked()
	m.notifyAllLocked(&server.Notification{
		Kind: server.NOTIFICATION_ROSTER_UPDATED,
		AdminID: m.adminID,
		Match: &summary,
	})
}

func (m *Match) notifyAllLocked(n *server.Notification) {
	n.MatchID = m.id
	for _, p := range m.roster {
		m.notifyLocked(p, n)
	}
}

func (m *Match) notifyLocked(p *Participant, n *server.Notification) {
	n.MatchID = m.id
	if p.sub == nil || !p.connected {
		return
	}
	if !m.deps.partitioner.CanObserve(m, p.connID) {
		return
	}
	m.outbox = append(m.outbox, delivery{sub: p.sub, notification: n})
}

//flush delivers queued notifications and hands over the result of a finished match. No lock is held while delivering.
func (m *Match) flush() {
	if m.deliver() && m.deps.finished != nil {
		m.deps.finished(m)
	}
}

//deliver reports whether the match result was handed over
func (m *Match) deliver() bool {
	m.flushMu.Lock()
	defer m.flushMu.Unlock()

	m.mu.Lock()
	out := m.outbox
	m.outbox = nil
	result := m.result
	m.result = nil
	m.mu.Unlock()

	for _, d := range out {
		if err := d.sub.Notify(d.notification); err != nil {
			m.logger.Warnw("Notification could not be delivered", "participantID", d.sub.UserID(), "kind", d.notification.Kind, "error", err)
		}
	}

	if result == nil {
		return false
	}
	if m.deps.recorder != nil {
		m.deps.recorder.RecordMatch(result)
	}
	return true
}

func (m *Match) run() {
	ticker := time.NewTicker(m.deps.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			if m.safeTick() {
				return
			}
		}
	}
}

//safeTick keeps a failing match from taking the process down with it
func (m *Match) safeTick() (finished bool) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Errorw("Recovered from panic in match tick", "panic", r)
			finished = false
		}
	}()
	return m.Tick(m.deps.clock.Now())
}

func (m *Match) shutdown() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
}
