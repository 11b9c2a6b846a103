package server

import (
	"context"
	"github.com/pkg/errors"
)

func (p *Pipeline) matchResponse(session Session, cid string, summary *MatchSummary) {
	resp := &MatchResp{Match: summary}
	if summary.Mode == MODE_RANKED && p.profiles != nil {
		//Slow or failing profile store degrades to unavailable and never fails the request
		resp.Profile = p.profiles.Fetch(context.Background(), session.Token(), session.UserID())
	}
	_ = session.Send(&Envelope{Cid: cid, Match: resp})
}

func (p *Pipeline) matchCreate(session Session, game GameController, envelope *Envelope) {
	incomingData := envelope.MatchCreate
	summary, err := game.CreateMatch(session, incomingData.Mode, incomingData.Options)
	if err != nil {
		p.logger.Infow("Match could not be created", "userID", session.UserID(), "error", err)
		_ = session.Send(errorEnvelope(envelope.Cid, err))
		return
	}

	p.matchResponse(session, envelope.Cid, summary)
	p.broadcastMatchList(game, summary.Mode)
}

func (p *Pipeline) matchJoin(session Session, game GameController, envelope *Envelope) {
	incomingData := envelope.MatchJoin
	summary, err := game.JoinMatch(session, incomingData.MatchID)
	if err != nil {
		p.logger.Infow("Match could not be joined", "userID", session.UserID(), "matchID", incomingData.MatchID, "error", err)
		_ = session.Send(errorEnvelope(envelope.Cid, err))
		return
	}

	p.matchResponse(session, envelope.Cid, summary)
	p.broadcastMatchList(game, summary.Mode)
}

func (p *Pipeline) matchFind(session Session, game GameController, envelope *Envelope) {
	incomingData := envelope.MatchFind
	summary, err := p.matchmaker.Find(session, game, incomingData.Mode)
	if err != nil {
		p.logger.Infow("Could not find match", "userID", session.UserID(), "mode", incomingData.Mode, "error", err)
		_ = session.Send(errorEnvelope(envelope.Cid, err))
		return
	}

	p.matchResponse(session, envelope.Cid, summary)
	p.broadcastMatchList(game, summary.Mode)
}

func (p *Pipeline) matchLeave(session Session, game GameController, envelope *Envelope) {
	if err := game.LeaveMatch(session); err != nil {
		p.logger.Infow("Error in match leave", "userID", session.UserID(), "error", err)
		_ = session.Send(errorEnvelope(envelope.Cid, err))
		return
	}

	_ = session.Send(&Envelope{Cid: envelope.Cid})
	p.broadcastMatchList(game, "")
}

func (p *Pipeline) matchList(session Session, game GameController, envelope *Envelope) {
	mode := envelope.MatchList.Mode
	_ = session.Send(&Envelope{Cid: envelope.Cid, Matches: &MatchListResp{
		Mode: mode,
		Matches: game.ListMatches(mode),
	}})
}

func (p *Pipeline) matchReady(session Session, game GameController, envelope *Envelope) {
	summary, err := game.ToggleReady(session)
	if err != nil {
		_ = session.Send(errorEnvelope(envelope.Cid, err))
		return
	}

	_ = session.Send(&Envelope{Cid: envelope.Cid, Match: &MatchResp{Match: summary}})
	if summary.State != MATCH_STATE_LOBBY {
		//Started matches disappear from open match lists
		p.broadcastMatchList(game, summary.Mode)
	}
}

func (p *Pipeline) matchKick(session Session, game GameController, envelope *Envelope) {
	if err := game.Kick(session, envelope.MatchKick.TargetID); err != nil {
		_ = session.Send(errorEnvelope(envelope.Cid, err))
		return
	}

	_ = session.Send(&Envelope{Cid: envelope.Cid})
	p.broadcastMatchList(game, "")
}

//actionSubmit answers only failures, accepted actions are confirmed by the round summary
func (p *Pipeline) actionSubmit(session Session, game GameController, envelope *Envelope) {
	err := game.SubmitAction(session, *envelope.ActionSubmit)
	if err == nil || IsActionRejection(err) || errors.Cause(err) == ErrStaleRound {
		//rejections were already signalled as notifications
		return
	}
	_ = session.Send(errorEnvelope(envelope.Cid, err))
}
