package model

import "github.com/globalsign/mgo/bson"

type LeaderboardModel struct {
	Id bson.ObjectId `bson:"_id,omitempty" json:"-"`
	Type string `bson:"type" json:"type"` //day, week, month, overall
	TypeID *string `bson:"typeID" json:"type_id"` // could be nil for overall
	Mode *string `bson:"mode" json:"mode"` // could be nil or given mode name
	UserID string `bson:"userID" json:"user_id"`
	Score int64 `bson:"score" json:"score"`
}

func (_ LeaderboardModel) GetCollectionName() string {
	return "scores"
}
