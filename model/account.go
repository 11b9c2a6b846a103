package model

import "github.com/globalsign/mgo/bson"

type Account struct {
	Id bson.ObjectId `bson:"_id"`
	Fingerprint string `bson:"fingerprint"`
	Username string `bson:"username"`
	CreatedAt int64 `bson:"createdAt"`
}

func (Account) GetCollectionName() string {
	return "accounts"
}
