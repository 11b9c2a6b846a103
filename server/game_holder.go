package server

import (
	"sync"
)

type GameHolder struct {
	sync.RWMutex
	games map[string]GameController
	defaultGame string
}

func NewGameHolder(config *Config) *GameHolder {
	return &GameHolder{
		games: make(map[string]GameController),
		defaultGame: config.MatchConfig.DefaultGame,
	}
}

//Get returns the game registered with given name, empty name means default game
func (r *GameHolder) Get(gameName string) GameController {
	if gameName == "" {
		gameName = r.defaultGame
	}
	var g GameController
	r.RLock()
	g = r.games[gameName]
	r.RUnlock()
	return g
}

func (r *GameHolder) Add(g GameController) {
	r.Lock()
	r.games[g.GetName()] = g
	r.Unlock()
}

func (r *GameHolder) Remove(gameName string) {
	r.Lock()
	delete(r.games, gameName)
	r.Unlock()
}

func (r *GameHolder) all() []GameController {
	r.RLock()
	games := make([]GameController, 0, len(r.games))
	for _, g := range r.games {
		games = append(games, g)
	}
	r.RUnlock()
	return games
}

//connect gives every game the chance to rebind a returning identity
func (r *GameHolder) connect(session Session) (string, bool) {
	for _, g := range r.all() {
		if matchID, ok := g.Connect(session); ok {
			return matchID, true
		}
	}
	return "", false
}

func (r *GameHolder) disconnect(session Session) {
	for _, g := range r.all() {
		g.Disconnect(session)
	}
}
