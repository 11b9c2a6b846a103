package server

//Envelope is the only message type written to or read from socket connections.
//Exactly one of the payload fields is set.
type Envelope struct {
	Cid string `json:"cid,omitempty"`
	Game string `json:"game,omitempty"`

	MatchCreate *MatchCreate `json:"match_create,omitempty"`
	MatchJoin *MatchJoin `json:"match_join,omitempty"`
	MatchFind *MatchFind `json:"match_find,omitempty"`
	MatchLeave *MatchLeave `json:"match_leave,omitempty"`
	MatchList *MatchList `json:"match_list,omitempty"`
	MatchReady *MatchReady `json:"match_ready,omitempty"`
	MatchKick *MatchKick `json:"match_kick,omitempty"`
	ActionSubmit *ActionRequest `json:"action_submit,omitempty"`

	Match *MatchResp `json:"match,omitempty"`
	Matches *MatchListResp `json:"matches,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
	Error *Error `json:"error,omitempty"`
}

type MatchCreate struct {
	Mode string `json:"mode"`
	Options MatchOptions `json:"options"`
}

type MatchJoin struct {
	MatchID string `json:"match_id"`
}

type MatchFind struct {
	Mode string `json:"mode"`
}

type MatchLeave struct {}

type MatchList struct {
	Mode string `json:"mode"`
}

type MatchReady struct {}

type MatchKick struct {
	TargetID string `json:"target_id"`
}

type MatchResp struct {
	Match *MatchSummary `json:"match"`
	Profile *ProfileStatus `json:"profile,omitempty"`
}

type MatchListResp struct {
	Mode string `json:"mode"`
	Matches []MatchSummary `json:"matches"`
}

type Error struct {
	Code int32 `json:"code"`
	Message string `json:"message"`
}

//PubSubMessage travels between nodes
type PubSubMessage struct {
	NodeID string `json:"node_id"`
	//When All is true message goes to every session of receiving node
	All bool `json:"all,omitempty"`
	UserIDs []string `json:"user_ids,omitempty"`
	Data *Envelope `json:"data"`
}

func errorEnvelope(cid string, err error) *Envelope {
	return &Envelope{Cid: cid, Error: &Error{
		Code: ErrorCode(err),
		Message: err.Error(),
	}}
}
