package game

import (
	"standoff/server"
	"time"
)

//Standoff is the turn based shootout game. It adapts the match registry to server.GameController.
type Standoff struct {
	registry *Registry
	specs server.GameSpecs
}

const STANDOFF_GAME_NAME = "standoff"

func NewStandoff(rules Rules, partitioner *server.Partitioner, contexts server.ContextAllocator, options Options, logger *server.Logger) *Standoff {
	return &Standoff{
		registry: NewRegistry(STANDOFF_GAME_NAME, rules, partitioner, contexts, options, logger.With("game", STANDOFF_GAME_NAME)),
		specs: server.GameSpecs{
			MinPlayers: rules.MinPlayers,
			PlayerCount: rules.MaxPlayers,
			Mode: server.GAME_TYPE_ACTIVE_TURN_BASED,
			TickInterval: int(options.TickInterval / time.Millisecond),
		},
	}
}

func (g *Standoff) GetName() string {
	return STANDOFF_GAME_NAME
}

func (g *Standoff) GetGameSpecs() server.GameSpecs {
	return g.specs
}

func (g *Standoff) Registry() *Registry {
	return g.registry
}

func connectionID(session server.Session) string {
	return session.ID().String()
}

func (g *Standoff) CreateMatch(session server.Session, mode string, options server.MatchOptions) (*server.MatchSummary, error) {
	m, err := g.registry.CreateMatch(mode, session, connectionID(session), options)
	if err != nil {
		return nil, err
	}
	summary := m.Summary()
	return &summary, nil
}

func (g *Standoff) JoinMatch(session server.Session, matchID string) (*server.MatchSummary, error) {
	m, err := g.registry.JoinMatch(matchID, session, connectionID(session))
	if err != nil {
		return nil, err
	}
	summary := m.Summary()
	return &summary, nil
}

func (g *Standoff) LeaveMatch(session server.Session) error {
	return g.registry.LeaveMatch(session.UserID())
}

func (g *Standoff) ToggleReady(session server.Session) (*server.MatchSummary, error) {
	summary, err := g.registry.ToggleReady(session.UserID())
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (g *Standoff) Kick(session server.Session, targetID string) error {
	return g.registry.Kick(session.UserID(), targetID)
}

func (g *Standoff) SubmitAction(session server.Session, action server.ActionRequest) error {
	return g.registry.SubmitAction(session.UserID(), action)
}

func (g *Standoff) ListMatches(mode string) []server.MatchSummary {
	return g.registry.GetOpenMatches(mode)
}

func (g *Standoff) Connect(session server.Session) (string, bool) {
	return g.registry.Connect(session, connectionID(session))
}

func (g *Standoff) Disconnect(session server.Session) {
	g.registry.Disconnect(session.UserID(), connectionID(session))
}
