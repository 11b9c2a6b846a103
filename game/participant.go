package game

import (
	"standoff/model"
	"standoff/server"
)

//Subscriber is the connection notifications of a participant are delivered to. server.Session satisfies it.
type Subscriber interface {
	UserID() string
	Username() string
	Notify(notification *server.Notification) error
}

type Participant struct {
	ID string
	Name string

	sub Subscriber
	connID string
	connected bool
	joinSeq int

	Ready bool
	Alive bool
	Health int
	Ammo int
	Covering bool
	HoldsRole bool

	Stats model.ParticipantStats
}

func newParticipant(id, name string, sub Subscriber, connID string, seq int) *Participant {
	return &Participant{
		ID: id,
		Name: name,
		sub: sub,
		connID: connID,
		connected: sub != nil,
		joinSeq: seq,
	}
}

func (p *Participant) ConnectionID() string {
	return p.connID
}

func (p *Participant) Connected() bool {
	return p.connected
}

func (p *Participant) view(adminID string) server.ParticipantView {
	return server.ParticipantView{
		ID: p.ID,
		Name: p.Name,
		Admin: p.ID == adminID,
		Ready: p.Ready,
		Connected: p.connected,
		Alive: p.Alive,
		Health: p.Health,
		Ammo: p.Ammo,
		HoldsRole: p.HoldsRole,
	}
}

func (p *Participant) result() model.ParticipantResult {
	return model.ParticipantResult{
		UserID: p.ID,
		Name: p.Name,
		Stats: p.Stats,
		Points: p.Stats.Points(),
		Survived: p.Alive,
		HeldRole: p.HoldsRole,
	}
}

func (p *Participant) heal(amount int, max int) {
	p.Health += amount
	if p.Health > max {
		p.Health = max
	}
}
