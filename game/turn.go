package game

import (
	"github.com/pkg/errors"
	"standoff/server"
	"time"
)

type Phase int

const (
	PHASE_WAITING Phase = iota
	PHASE_COLLECTING
	PHASE_RESOLVING
	PHASE_INTERMISSION
	PHASE_MATCH_OVER
)

func (p Phase) String() string {
	switch p {
	case PHASE_COLLECTING:
		return "collecting"
	case PHASE_RESOLVING:
		return "resolving"
	case PHASE_INTERMISSION:
		return "intermission"
	case PHASE_MATCH_OVER:
		return "match_over"
	}
	return "waiting"
}

type pendingAction struct {
	actorID string
	kind server.ActionKind
	targetID string
}

type turnState struct {
	phase Phase
	round int
	deadline time.Time
	pending map[string]*pendingAction
	//submission order, resolution is ordered by it within a category
	order []*pendingAction
}

func newTurnState() turnState {
	return turnState{
		phase: PHASE_WAITING,
		pending: make(map[string]*pendingAction),
	}
}

func (t *turnState) reset() {
	t.pending = make(map[string]*pendingAction)
	t.order = nil
}

func (t *turnState) drop(actorID string) {
	if _, ok := t.pending[actorID]; !ok {
		return
	}
	delete(t.pending, actorID)
	for i, a := range t.order {
		if a.actorID == actorID {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

func (t *turnState) deadlineMillis() int64 {
	if t.deadline.IsZero() {
		return 0
	}
	return t.deadline.UnixNano() / int64(time.Millisecond)
}

func (m *Match) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.turn.phase
}

func (m *Match) Round() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.turn.round
}

//Submit records the single action of a participant for the current round.
//Rejected submissions are reported to the submitter, stale ones are dropped silently.
func (m *Match) Submit(id string, req server.ActionRequest) error {
	err := m.submit(id, req, m.deps.clock.Now())
	m.flush()
	return err
}

func (m *Match) submit(id string, req server.ActionRequest, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, _ := m.find(id)
	if p == nil {
		return errors.Wrapf(server.ErrNotMember, "%s is not in match %s", id, m.id)
	}

	err := m.validateLocked(p, req)
	if err != nil {
		if errors.Cause(err) == server.ErrStaleRound {
			m.logger.Debugw("Stale submission ignored", "participantID", id, "round", req.Round, "current", m.turn.round)
			return err
		}
		reason := server.RejectionReason(err)
		m.deps.stats.IncrActionRejected(reason)
		m.notifyLocked(p, &server.Notification{
			Kind: server.NOTIFICATION_ACTION_REJECTED,
			Round: m.turn.round,
			ParticipantID: id,
			Reason: reason,
		})
		return err
	}

	action := &pendingAction{actorID: id, kind: req.Kind, targetID: req.TargetID}
	m.turn.pending[id] = action
	m.turn.order = append(m.turn.order, action)

	if m.allSubmittedLocked() {
		m.resolveLocked(now)
	}
	return nil
}

func (m *Match) validateLocked(p *Participant, req server.ActionRequest) error {
	t := &m.turn
	resolved := req.Round > 0 && (req.Round < t.round || (req.Round == t.round && t.phase != PHASE_COLLECTING))
	if m.state == MATCH_FINISHED || resolved {
		return errors.Wrapf(server.ErrStaleRound, "round %d", req.Round)
	}
	if m.state != MATCH_IN_PROGRESS || t.phase != PHASE_COLLECTING || (req.Round > 0 && req.Round != t.round) {
		return errors.Wrapf(server.ErrCollectionClosed, "round %d is %s", t.round, t.phase)
	}
	if !p.Alive {
		return errors.Wrap(server.ErrNotAlive, p.ID)
	}
	if _, ok := t.pending[p.ID]; ok {
		return errors.Wrapf(server.ErrDuplicateAction, "%s in round %d", p.ID, t.round)
	}
	if !req.Kind.Valid() {
		return errors.Wrapf(server.ErrInvalidAction, "%q", req.Kind)
	}

	if req.Kind.NeedsTarget() {
		target, _ := m.find(req.TargetID)
		if target == nil || target.ID == p.ID || !target.Alive {
			return errors.Wrapf(server.ErrInvalidTarget, "%q", req.TargetID)
		}
		if p.Ammo < m.shotCost(req.Kind) {
			return errors.Wrapf(server.ErrInsufficientAmmo, "%d available", p.Ammo)
		}
	}

	if req.Kind == server.ACTION_RELOAD && m.rules.MaxAmmo > 0 && p.Ammo >= m.rules.MaxAmmo {
		return errors.Wrapf(server.ErrAmmoFull, "%d", p.Ammo)
	}
	return nil
}

func (m *Match) shotCost(kind server.ActionKind) int {
	if kind == server.ACTION_SUPER_SHOOT {
		return m.rules.SuperShootCost
	}
	return 1
}

//allSubmittedLocked only waits on alive participants that are still connected
func (m *Match) allSubmittedLocked() bool {
	alive := 0
	for _, p := range m.roster {
		if !p.Alive || !p.connected {
			continue
		}
		alive++
		if _, ok := m.turn.pending[p.ID]; !ok {
			return false
		}
	}
	return alive > 0
}

//Tick advances timed phases. It reports whether the match is over.
func (m *Match) Tick(now time.Time) bool {
	finished := m.tick(now)
	m.flush()
	return finished
}

func (m *Match) tick(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.turn.phase {
	case PHASE_COLLECTING:
		if !now.Before(m.turn.deadline) {
			m.resolveLocked(now)
		}
	case PHASE_INTERMISSION:
		if !now.Before(m.turn.deadline) {
			m.startRoundLocked(now)
		}
	}
	return m.turn.phase == PHASE_MATCH_OVER
}

func (m *Match) startRoundLocked(now time.Time) {
	t := &m.turn
	t.round++
	t.phase = PHASE_COLLECTING
	t.deadline = now.Add(m.rules.RoundDuration)
	t.reset()

	for _, p := range m.roster {
		p.Covering = false
	}

	m.notifyAllLocked(&server.Notification{
		Kind: server.NOTIFICATION_ROUND_STARTED,
		Round: t.round,
		Duration: int64(m.rules.RoundDuration / time.Millisecond),
		Deadline: t.deadlineMillis(),
	})
}

//resolveLocked applies the collected actions in category order: covers, reloads, then shots.
//Shots are simultaneous so a shooter eliminated earlier in the same pass still fires.
func (m *Match) resolveLocked(now time.Time) {
	t := &m.turn
	t.phase = PHASE_RESOLVING

	alive := make(map[string]bool, len(m.roster))
	for _, p := range m.roster {
		if p.Alive {
			alive[p.ID] = true
		}
	}

	var covers, reloads, shots []*pendingAction
	for _, a := range t.order {
		switch a.kind {
		case server.ACTION_COVER:
			covers = append(covers, a)
		case server.ACTION_RELOAD:
			reloads = append(reloads, a)
		case server.ACTION_SHOOT, server.ACTION_SUPER_SHOOT:
			shots = append(shots, a)
		}
	}

	summary := server.RoundSummary{Round: t.round}

	for _, a := range covers {
		actor, _ := m.find(a.actorID)
		if actor == nil {
			continue
		}
		actor.Covering = true
		actor.Stats.TimesCovered++
		summary.Actions = append(summary.Actions, server.ActionOutcome{ActorID: actor.ID, Kind: a.kind, Outcome: server.OUTCOME_COVERED})
	}

	for _, a := range reloads {
		actor, _ := m.find(a.actorID)
		if actor == nil {
			continue
		}
		actor.Ammo++
		if m.rules.MaxAmmo > 0 && actor.Ammo > m.rules.MaxAmmo {
			actor.Ammo = m.rules.MaxAmmo
		}
		actor.Stats.Reloads++
		summary.Actions = append(summary.Actions, server.ActionOutcome{ActorID: actor.ID, Kind: a.kind, Outcome: server.OUTCOME_RELOADED})
	}

	hit := make(map[string]bool)
	var eliminated []*Participant
	for _, a := range shots {
		outcome, victim := m.resolveShotLocked(a, alive, hit)
		if outcome == nil {
			continue
		}
		summary.Actions = append(summary.Actions, *outcome)
		if victim != nil {
			eliminated = append(eliminated, victim)
		}
	}

	m.notifyAllLocked(&server.Notification{
		Kind: server.NOTIFICATION_ACTION_RESOLVED,
		Round: t.round,
		Summary: &summary,
	})
	m.deps.stats.IncrRoundResolved(m.mode)
	m.logger.Debugw("Round resolved", "round", t.round, "actions", len(summary.Actions), "eliminated", len(eliminated))

	t.reset()

	if m.checkTerminationLocked(now) {
		return
	}
	t.phase = PHASE_INTERMISSION
	t.deadline = now.Add(m.rules.IntermissionDuration)
}

func (m *Match) resolveShotLocked(a *pendingAction, alive map[string]bool, hit map[string]bool) (*server.ActionOutcome, *Participant) {
	shooter, _ := m.find(a.actorID)
	if shooter == nil {
		return nil, nil
	}
	out := &server.ActionOutcome{ActorID: shooter.ID, Kind: a.kind, TargetID: a.targetID}

	cost := m.shotCost(a.kind)
	if shooter.Ammo < cost {
		out.Outcome = server.OUTCOME_NO_AMMO
		return out, nil
	}

	target, _ := m.find(a.targetID)
	if target == nil || !alive[target.ID] {
		out.Outcome = server.OUTCOME_INVALID_TARGET
		return out, nil
	}

	shooter.Ammo -= cost
	shooter.Stats.ShotsFired++

	if !target.Alive {
		out.Outcome = server.OUTCOME_ALREADY_ELIMINATED
		return out, nil
	}

	out.Outcome = server.OUTCOME_HIT
	if target.Covering {
		if a.kind != server.ACTION_SUPER_SHOOT {
			out.Outcome = server.OUTCOME_BLOCKED
			return out, nil
		}
		target.Covering = false
		out.Outcome = server.OUTCOME_COVER_BROKEN
	}

	if m.rules.DamagePolicy == DAMAGE_ONE_HIT_PER_ROUND && hit[target.ID] {
		m.logger.Debugw("Hit absorbed", "shooterID", shooter.ID, "targetID", target.ID, "round", m.turn.round)
		out.Outcome = server.OUTCOME_ABSORBED
		return out, nil
	}

	hit[target.ID] = true
	target.Health--
	shooter.Stats.DamageDealt++

	if target.Health > 0 {
		return out, nil
	}

	target.Health = 0
	out.Killed = true
	m.eliminateLocked(target, shooter)
	return out, target
}

func (m *Match) eliminateLocked(victim *Participant, killer *Participant) {
	if !victim.Alive {
		return
	}
	victim.Alive = false
	victim.Covering = false

	n := &server.Notification{Kind: server.NOTIFICATION_PARTICIPANT_ELIMINATED, Round: m.turn.round, ParticipantID: victim.ID}
	if killer != nil {
		n.KillerID = killer.ID
	}
	m.notifyAllLocked(n)

	if killer == nil {
		if victim.HoldsRole {
			m.revokeRoleLocked(victim)
		}
		return
	}
	killer.Stats.Kills++
	m.onKillLocked(killer, victim)
}

//checkTerminationLocked finishes the match once at most one participant is alive
func (m *Match) checkTerminationLocked(now time.Time) bool {
	var last *Participant
	alive := 0
	for _, p := range m.roster {
		if p.Alive {
			alive++
			last = p
		}
	}
	if alive > 1 {
		return false
	}
	m.finishLocked(last, now)
	return true
}

func (m *Match) finishLocked(winner *Participant, now time.Time) {
	m.turn.phase = PHASE_MATCH_OVER
	m.turn.deadline = time.Time{}
	m.state = MATCH_FINISHED

	n := &server.Notification{Kind: server.NOTIFICATION_MATCH_OVER, Round: m.turn.round, Draw: winner == nil}
	if winner != nil {
		n.WinnerID = winner.ID
	}
	summary := m.summaryLocked()
	n.Match = &summary
	m.notifyAllLocked(n)

	m.result = m.resultLocked(winner, now)
	m.logger.Infow("Match finished", "round", m.turn.round, "winnerID", n.WinnerID, "draw", n.Draw)
	m.shutdown()
}
