package server

const (
	GAME_TYPE_PASSIVE_TURN_BASED int = iota
	GAME_TYPE_ACTIVE_TURN_BASED
	GAME_TYPE_REAL_TIME
)

const (
	MODE_CASUAL = "casual"
	MODE_RANKED = "ranked"
)

const (
	MATCH_STATE_LOBBY = "lobby"
	MATCH_STATE_IN_PROGRESS = "in_progress"
	MATCH_STATE_FINISHED = "finished"
)

type ActionKind string

const (
	ACTION_SHOOT ActionKind = "shoot"
	ACTION_SUPER_SHOOT ActionKind = "super_shoot"
	ACTION_RELOAD ActionKind = "reload"
	ACTION_COVER ActionKind = "cover"
)

func (k ActionKind) Valid() bool {
	switch k {
	case ACTION_SHOOT, ACTION_SUPER_SHOOT, ACTION_RELOAD, ACTION_COVER:
		return true
	}
	return false
}

//NeedsTarget is true for the kinds which damage another participant
func (k ActionKind) NeedsTarget() bool {
	return k == ACTION_SHOOT || k == ACTION_SUPER_SHOOT
}

type GameSpecs struct {
	MinPlayers int
	PlayerCount int
	Mode int
	//Milliseconds, 0 means the game is driven from outside
	TickInterval int
}

//MatchOptions are optional values given while creating a match
type MatchOptions struct {
	MatchID string `json:"match_id,omitempty"`
	DamagePolicy string `json:"damage_policy,omitempty"`
}

type ActionRequest struct {
	Kind ActionKind `json:"kind"`
	TargetID string `json:"target_id,omitempty"`
	//0 means current round
	Round int `json:"round,omitempty"`
}

type ParticipantView struct {
	ID string `json:"id"`
	Name string `json:"name"`
	Admin bool `json:"admin,omitempty"`
	Ready bool `json:"ready,omitempty"`
	Connected bool `json:"connected"`
	Alive bool `json:"alive"`
	Health int `json:"health"`
	Ammo int `json:"ammo"`
	HoldsRole bool `json:"holds_role,omitempty"`
}

type MatchSummary struct {
	ID string `json:"id"`
	Game string `json:"game"`
	Mode string `json:"mode"`
	State string `json:"state"`
	AdminID string `json:"admin_id"`
	Round int `json:"round"`
	MaxPlayers int `json:"max_players"`
	DamagePolicy string `json:"damage_policy"`
	Players []ParticipantView `json:"players"`
	CreatedAt int64 `json:"created_at"`
}

//GameController is implemented by every game which can be registered in the game holder
type GameController interface {
	GetName() string
	GetGameSpecs() GameSpecs

	CreateMatch(session Session, mode string, options MatchOptions) (*MatchSummary, error)
	JoinMatch(session Session, matchID string) (*MatchSummary, error)
	LeaveMatch(session Session) error
	ToggleReady(session Session) (*MatchSummary, error)
	Kick(session Session, targetID string) error
	SubmitAction(session Session, action ActionRequest) error
	ListMatches(mode string) []MatchSummary

	//Connect is called for every new socket connection, it returns the match id if the identity was rebound to its match
	Connect(session Session) (string, bool)
	//Disconnect is called when socket connection was closed
	Disconnect(session Session)
}
