package server

import (
	"github.com/pkg/errors"
)

type Pipeline struct {
	config *Config
	gameHolder *GameHolder
	sessionHolder *SessionHolder
	matchmaker Matchmaker
	pubsub *PubSub
	profiles ProfileStore
	logger *Logger
}

func NewPipeline(config *Config, gameHolder *GameHolder, sessionHolder *SessionHolder, matchmaker Matchmaker, pubsub *PubSub, profiles ProfileStore, logger *Logger) *Pipeline {
	return &Pipeline{
		config: config,
		gameHolder: gameHolder,
		sessionHolder: sessionHolder,
		matchmaker: matchmaker,
		pubsub: pubsub,
		profiles: profiles,
		logger: logger,
	}
}

func (p *Pipeline) handleSocketRequests(session Session, envelope *Envelope) bool {

	game := p.gameHolder.Get(envelope.Game)
	if game == nil {
		p.logger.Warnw("Request for unknown game", "game", envelope.Game, "sessionID", session.ID().String())
		_ = session.Send(errorEnvelope(envelope.Cid, errors.Wrapf(ErrGameNotFound, "%q", envelope.Game)))
		return true
	}

	switch {
	case envelope.MatchCreate != nil:
		p.matchCreate(session, game, envelope)
	case envelope.MatchJoin != nil:
		p.matchJoin(session, game, envelope)
	case envelope.MatchFind != nil:
		p.matchFind(session, game, envelope)
	case envelope.MatchLeave != nil:
		p.matchLeave(session, game, envelope)
	case envelope.MatchList != nil:
		p.matchList(session, game, envelope)
	case envelope.MatchReady != nil:
		p.matchReady(session, game, envelope)
	case envelope.MatchKick != nil:
		p.matchKick(session, game, envelope)
	case envelope.ActionSubmit != nil:
		p.actionSubmit(session, game, envelope)
	default:
		// If we reached this point the envelope was valid but the contents are missing or unknown.
		// Usually caused by a version mismatch, and should cause the session making this pipeline request to close.
		p.logger.Warnw("Unrecognizable payload received", "sessionID", session.ID().String(), "cid", envelope.Cid)
		_ = session.Send(&Envelope{Cid: envelope.Cid, Error: &Error{
			Code: ERROR_UNRECOGNIZED_PAYLOAD,
			Message: "Unrecognized message.",
		}})
		return false
	}

	return true

}
