package server

import (
	"context"
	"github.com/globalsign/mgo"
	"github.com/pkg/errors"
	"standoff/model"
	"sync"
)

//ResultRecorder persists finished matches and fans their points out to leaderboards, profiles and push.
//Every step runs in background, failures are only logged.
type ResultRecorder struct {
	db *mgo.Session
	database string
	leaderboard *Leaderboard
	profiles ProfileStore
	push *PushService
	sessionHolder *SessionHolder
	logger *Logger

	wg sync.WaitGroup
}

func NewResultRecorder(db *mgo.Session, config *Config, leaderboard *Leaderboard, profiles ProfileStore, push *PushService, sessionHolder *SessionHolder, logger *Logger) *ResultRecorder {
	return &ResultRecorder{
		db: db,
		database: config.DBConfig.Database,
		leaderboard: leaderboard,
		profiles: profiles,
		push: push,
		sessionHolder: sessionHolder,
		logger: logger,
	}
}

func (r *ResultRecorder) RecordMatch(result *model.MatchResult) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.record(result)
	}()
}

//Wait blocks until every pending result was handled
func (r *ResultRecorder) Wait() {
	r.wg.Wait()
}

func (r *ResultRecorder) record(result *model.MatchResult) {
	logger := r.logger.With("matchID", result.MatchID)

	if err := r.persist(result); err != nil {
		logger.Errorw("Match result could not be saved", "error", err)
	}

	for _, p := range result.Participants {
		if err := r.leaderboard.Score(p.UserID, result.Mode, p.Points); err != nil {
			logger.Errorw("Leaderboard score could not be saved", "userID", p.UserID, "error", err)
		}

		if result.Mode == MODE_RANKED && r.profiles != nil {
			if err := r.profiles.AddRankedPoints(context.Background(), r.tokenOf(p.UserID), p.UserID, p.Points); err != nil {
				logger.Warnw("Ranked points could not be added", "userID", p.UserID, "error", err)
			}
		}
	}

	body := map[string]string{"en": "Match is over"}
	if result.WinnerID != nil {
		body["en"] = "Match is over, check who won!"
	}
	r.push.SendNotificationWithUserIDs(map[string]string{"en": "Standoff"}, body, result.UserIDs()...)

	logger.Infow("Match result recorded", "participants", len(result.Participants), "draw", result.Draw)
}

func (r *ResultRecorder) persist(result *model.MatchResult) error {
	if r.db == nil {
		return nil
	}
	conn := r.db.Copy()
	defer conn.Close()
	if err := conn.DB(r.database).C(result.GetCollectionName()).Insert(result); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (r *ResultRecorder) tokenOf(userID string) string {
	if r.sessionHolder == nil {
		return ""
	}
	if s := r.sessionHolder.GetByUserID(userID); s != nil {
		return s.Token()
	}
	return ""
}
