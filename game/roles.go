package game

import (
	"standoff/model"
	"standoff/server"
	"time"
)

//roleState tracks the single privileged role of a match
type roleState struct {
	holder string
	//kills per participant, never reset during the match
	ledger map[string]int
}

func newRoleState() roleState {
	return roleState{ledger: make(map[string]int)}
}

//RoleHolder returns the id of the current holder or empty string
func (m *Match) RoleHolder() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roles.holder
}

func (m *Match) KillCount(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roles.ledger[id]
}

func (m *Match) onKillLocked(killer *Participant, victim *Participant) {
	r := &m.roles
	r.ledger[killer.ID]++

	if victim.HoldsRole {
		m.revokeRoleLocked(victim)
		//killing the holder takes over the role without a roll
		if killer.Alive && r.ledger[killer.ID] >= m.rules.RoleKillThreshold {
			m.grantRoleLocked(killer, true)
		}
		return
	}

	if r.holder != "" {
		if r.holder == killer.ID && killer.Alive {
			killer.heal(m.rules.RolePassiveHeal, m.rules.MaxHealth)
		}
		return
	}

	m.evaluateRoleLocked()
}

//evaluateRoleLocked picks one eligible participant uniformly and grants the role with the configured probability
func (m *Match) evaluateRoleLocked() {
	var candidates []*Participant
	for _, p := range m.roster {
		if p.Alive && m.roles.ledger[p.ID] >= m.rules.RoleKillThreshold {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return
	}

	pick := candidates[m.roller.Intn(len(candidates))]
	if roll := m.roller.Float64(); roll >= m.rules.RoleProbability {
		m.logger.Debugw("Role roll failed", "participantID", pick.ID, "roll", roll)
		return
	}
	m.grantRoleLocked(pick, false)
}

func (m *Match) grantRoleLocked(p *Participant, fullHeal bool) bool {
	if m.roles.holder != "" {
		return false
	}
	m.roles.holder = p.ID
	p.HoldsRole = true
	if fullHeal {
		p.Health = m.rules.MaxHealth
	} else {
		p.heal(m.rules.RolePartialHeal, m.rules.MaxHealth)
	}

	m.notifyAllLocked(&server.Notification{
		Kind: server.NOTIFICATION_ROLE_GRANTED,
		Round: m.turn.round,
		ParticipantID: p.ID,
		IsFullHeal: fullHeal,
	})
	m.logger.Infow("Role granted", "participantID", p.ID, "fullHeal", fullHeal)
	return true
}

func (m *Match) revokeRoleLocked(p *Participant) {
	if m.roles.holder != p.ID {
		return
	}
	m.roles.holder = ""
	p.HoldsRole = false

	m.notifyAllLocked(&server.Notification{
		Kind: server.NOTIFICATION_ROLE_REVOKED,
		Round: m.turn.round,
		ParticipantID: p.ID,
	})
	m.logger.Infow("Role revoked", "participantID", p.ID)
}

func (m *Match) resultLocked(winner *Participant, now time.Time) *model.MatchResult {
	result := &model.MatchResult{
		MatchID: m.id,
		Game: m.deps.game,
		Mode: m.mode,
		Draw: winner == nil,
		Rounds: m.turn.round,
		StartedAt: m.startedAt.Unix(),
		FinishedAt: now.Unix(),
	}
	if winner != nil {
		id := winner.ID
		result.WinnerID = &id
	}
	for _, p := range m.roster {
		result.Participants = append(result.Participants, p.result())
	}
	for _, p := range m.departed {
		result.Participants = append(result.Participants, p.result())
	}
	return result
}
