package server

import (
	"fmt"
	"github.com/kayalardanmehmet/redsync-radix"
	"github.com/mediocregopher/radix/v3"
	"github.com/pkg/errors"
	"sync"
)

//Matchmaker puts a session into the first open match of a mode, or opens a new one
type Matchmaker interface {
	Find(session Session, game GameController, mode string) (*MatchSummary, error)
}

type LocalMatchmaker struct {
	sync.Mutex
	redis radix.Client
	logger *Logger
}

func NewLocalMatchMaker(redis radix.Client, logger *Logger) Matchmaker {
	return &LocalMatchmaker{
		redis: redis,
		logger: logger,
	}
}

func (m *LocalMatchmaker) Find(session Session, game GameController, mode string) (*MatchSummary, error) {
	queueKey := m.generateQueueKey(game.GetName(), mode)

	//Queue lock is shared by every node when redis is available
	if m.redis != nil {
		rs := redsyncradix.New([]radix.Client{m.redis})
		mutex := rs.NewMutex("lock|gamequeue|" + queueKey)
		if err := mutex.Lock(); err != nil {
			m.logger.Warnw("Could not acquire queue lock", "queue", queueKey, "error", err)
		} else {
			defer mutex.Unlock()
		}
	}

	m.Lock()
	defer m.Unlock()

	for _, open := range game.ListMatches(mode) {
		if open.MaxPlayers > 0 && len(open.Players) >= open.MaxPlayers {
			continue
		}
		summary, err := game.JoinMatch(session, open.ID)
		if err == nil {
			return summary, nil
		}
		switch errors.Cause(err) {
		case ErrMatchFull, ErrAlreadyStarted, ErrMatchNotFound:
			continue
		}
		return nil, err
	}

	return game.CreateMatch(session, mode, MatchOptions{})
}

func (m *LocalMatchmaker) generateQueueKey(gameName string, mode string) string {
	return fmt.Sprintf("gq:%s:%s", gameName, mode)
}
