package server

import (
	"github.com/satori/go.uuid"
	"sync"
)

type Session interface {
	ID() uuid.UUID
	UserID() string
	ClientIP() string
	ClientPort() string

	Username() string
	SetUsername(string)
	//Token is the opaque authorization token the connection was opened with
	Token() string

	Expiry() int64
	Consume(func(session Session, envelope *Envelope) bool)

	Send(envelope *Envelope) error
	SendBytes(payload []byte) error
	Notify(notification *Notification) error

	Close()
}

// SessionHolder maintains a thread-safe list of sessions to their IDs.
type SessionHolder struct {
	sync.RWMutex
	sessions map[uuid.UUID]Session
	users map[string]uuid.UUID
	config *Config
	gameHolder *GameHolder
}

func NewSessionHolder(config *Config, gameHolder *GameHolder) *SessionHolder {
	return &SessionHolder{
		sessions: make(map[uuid.UUID]Session),
		users: make(map[string]uuid.UUID),
		config: config,
		gameHolder: gameHolder,
	}
}

func (r *SessionHolder) Stop() {
	for _, s := range r.All() {
		s.Close()
	}
}

func (r *SessionHolder) Get(sessionID uuid.UUID) Session {
	var s Session
	r.RLock()
	s = r.sessions[sessionID]
	r.RUnlock()
	return s
}

//GetByUserID returns the latest session opened by given user
func (r *SessionHolder) GetByUserID(userID string) Session {
	var s Session
	r.RLock()
	if id, ok := r.users[userID]; ok {
		s = r.sessions[id]
	}
	r.RUnlock()
	return s
}

func (r *SessionHolder) All() []Session {
	r.RLock()
	sessions := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.RUnlock()
	return sessions
}

func (r *SessionHolder) Count() int {
	r.RLock()
	defer r.RUnlock()
	return len(r.sessions)
}

func (r *SessionHolder) add(s Session) {
	r.Lock()
	r.sessions[s.ID()] = s
	r.users[s.UserID()] = s.ID()
	r.Unlock()
}

//leave detaches closed session from the games it was playing
func (r *SessionHolder) leave(s Session) {
	if r.gameHolder != nil {
		r.gameHolder.disconnect(s)
	}
}

func (r *SessionHolder) remove(s Session) {
	r.Lock()
	delete(r.sessions, s.ID())
	if id, ok := r.users[s.UserID()]; ok && id == s.ID() {
		delete(r.users, s.UserID())
	}
	r.Unlock()
}
