package model

import (
	"github.com/globalsign/mgo/bson"
)

type ParticipantResult struct {
	UserID string `bson:"user_id" json:"user_id"`
	Name string `bson:"name" json:"name"`
	Stats ParticipantStats `bson:"stats" json:"stats"`
	Points int64 `bson:"points" json:"points"`
	Survived bool `bson:"survived" json:"survived"`
	HeldRole bool `bson:"held_role" json:"held_role"`
}

type MatchResult struct {
	Id bson.ObjectId `bson:"_id,omitempty" json:"-"`
	MatchID string `bson:"match_id" json:"match_id"`
	Game string `bson:"game" json:"game"`
	Mode string `bson:"mode" json:"mode"`
	WinnerID *string `bson:"winner_id" json:"winner_id"` // nil on draw
	Draw bool `bson:"draw" json:"draw"`
	Rounds int `bson:"rounds" json:"rounds"`
	Participants []ParticipantResult `bson:"participants" json:"participants"`
	StartedAt int64 `bson:"started_at" json:"started_at"`
	FinishedAt int64 `bson:"finished_at" json:"finished_at"`
}

func (MatchResult) GetCollectionName() string {
	return "matches"
}

//UserIDs returns ids of everyone who played the match
func (r MatchResult) UserIDs() []string {
	ids := make([]string, 0, len(r.Participants))
	for _, p := range r.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}
