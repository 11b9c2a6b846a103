package server

import (
	"github.com/jinzhu/configor"
	"github.com/satori/go.uuid"
	"sync"
	"testing"
)

type fakeSession struct {
	sync.Mutex
	id uuid.UUID
	userID string
	username string
	token string
	sent []*Envelope
	closed bool
}

func newFakeSession(userID string) *fakeSession {
	return &fakeSession{id: uuid.NewV4(), userID: userID, username: userID, token: "token-" + userID}
}

func (s *fakeSession) ID() uuid.UUID { return s.id }
func (s *fakeSession) UserID() string { return s.userID }
func (s *fakeSession) ClientIP() string { return "127.0.0.1" }
func (s *fakeSession) ClientPort() string { return "" }
func (s *fakeSession) Username() string { return s.username }
func (s *fakeSession) SetUsername(username string) { s.username = username }
func (s *fakeSession) Token() string { return s.token }
func (s *fakeSession) Expiry() int64 { return 0 }
func (s *fakeSession) Consume(func(session Session, envelope *Envelope) bool) {}
func (s *fakeSession) SendBytes(payload []byte) error { return nil }

func (s *fakeSession) Send(envelope *Envelope) error {
	s.Lock()
	s.sent = append(s.sent, envelope)
	s.Unlock()
	return nil
}

func (s *fakeSession) Notify(notification *Notification) error {
	return s.Send(&Envelope{Notification: notification})
}

func (s *fakeSession) Close() {
	s.Lock()
	s.closed = true
	s.Unlock()
}

func (s *fakeSession) envelopes() []*Envelope {
	s.Lock()
	defer s.Unlock()
	return append([]*Envelope(nil), s.sent...)
}

func (s *fakeSession) last() *Envelope {
	sent := s.envelopes()
	if len(sent) == 0 {
		return nil
	}
	return sent[len(sent)-1]
}

//fakeGame is a scriptable GameController
type fakeGame struct {
	sync.Mutex
	name string
	matches []MatchSummary
	joinErr map[string]error
	submitErr error
	created int
	joined []string
}

func newFakeGame(name string) *fakeGame {
	return &fakeGame{name: name, joinErr: make(map[string]error)}
}

func (g *fakeGame) GetName() string { return g.name }
func (g *fakeGame) GetGameSpecs() GameSpecs { return GameSpecs{MinPlayers: 2, PlayerCount: 4} }

func (g *fakeGame) CreateMatch(session Session, mode string, options MatchOptions) (*MatchSummary, error) {
	if mode != MODE_CASUAL && mode != MODE_RANKED {
		return nil, ErrInvalidMode
	}
	g.Lock()
	defer g.Unlock()
	g.created++
	summary := MatchSummary{
		ID: "created-" + session.UserID(),
		Game: g.name,
		Mode: mode,
		State: MATCH_STATE_LOBBY,
		AdminID: session.UserID(),
		MaxPlayers: 4,
		Players: []ParticipantView{{ID: session.UserID()}},
	}
	g.matches = append(g.matches, summary)
	return &summary, nil
}

func (g *fakeGame) JoinMatch(session Session, matchID string) (*MatchSummary, error) {
	g.Lock()
	defer g.Unlock()
	if err, ok := g.joinErr[matchID]; ok {
		return nil, err
	}
	for i := range g.matches {
		if g.matches[i].ID == matchID {
			g.matches[i].Players = append(g.matches[i].Players, ParticipantView{ID: session.UserID()})
			g.joined = append(g.joined, matchID)
			summary := g.matches[i]
			return &summary, nil
		}
	}
	return nil, ErrMatchNotFound
}

func (g *fakeGame) LeaveMatch(session Session) error { return nil }

func (g *fakeGame) ToggleReady(session Session) (*MatchSummary, error) {
	return nil, ErrNotMember
}

func (g *fakeGame) Kick(session Session, targetID string) error { return nil }

func (g *fakeGame) SubmitAction(session Session, action ActionRequest) error {
	return g.submitErr
}

func (g *fakeGame) ListMatches(mode string) []MatchSummary {
	g.Lock()
	defer g.Unlock()
	list := make([]MatchSummary, 0)
	for _, m := range g.matches {
		if mode == "" || m.Mode == mode {
			list = append(list, m)
		}
	}
	return list
}

func (g *fakeGame) Connect(session Session) (string, bool) { return "", false }
func (g *fakeGame) Disconnect(session Session) {}

func testConfig(t *testing.T) *Config {
	config := &Config{}
	if err := configor.Load(config); err != nil {
		t.Fatal("Error while loading default configuration", err)
	}
	return config
}
