package server

import (
	"github.com/globalsign/mgo"
	"github.com/globalsign/mgo/bson"
	"github.com/pkg/errors"
	"standoff/model"
	"strconv"
	"time"
)

const (
	LEADERBOARD_DAY = "day"
	LEADERBOARD_WEEK = "week"
	LEADERBOARD_MONTH = "month"
	LEADERBOARD_OVERALL = "overall"
)

type Leaderboard struct {
	db *mgo.Session
	database string
}

func NewLeaderboard(db *mgo.Session, config *Config) *Leaderboard {
	return &Leaderboard{
		db: db,
		database: config.DBConfig.Database,
	}
}

//periodIDs returns the bucket ids every score is written into, overall bucket has no id
func periodIDs(now time.Time) map[string]*string {
	year, week := now.ISOWeek()
	dayID := now.Format("02-01-2006")
	weekID := strconv.Itoa(week) + "-" + strconv.Itoa(year)
	monthID := now.Format("01-2006")
	return map[string]*string{
		LEADERBOARD_DAY: &dayID,
		LEADERBOARD_WEEK: &weekID,
		LEADERBOARD_MONTH: &monthID,
		LEADERBOARD_OVERALL: nil,
	}
}

//Score adds points to every period of the user both for the given mode and for all modes
func (l *Leaderboard) Score(userID string, mode string, score int64) error {
	if l == nil || l.db == nil {
		return nil
	}

	conn := l.db.Copy()
	defer conn.Close()
	db := conn.DB(l.database)

	for typeName, typeID := range periodIDs(time.Now()) {
		if err := l.scoreDetail(db, userID, &mode, typeName, typeID, score); err != nil {
			return err
		}
		if err := l.scoreDetail(db, userID, nil, typeName, typeID, score); err != nil {
			return err
		}
	}
	return nil
}

func (l *Leaderboard) scoreDetail(db *mgo.Database, userID string, mode *string, typeName string, typeID *string, score int64) error {
	_, err := db.C(model.LeaderboardModel{}.GetCollectionName()).Upsert(bson.M{
		"userID": userID,
		"mode": mode,
		"type": typeName,
		"typeID": typeID,
	}, bson.M{
		"$inc": bson.M{"score": score},
	})
	if err != nil {
		return errors.Wrapf(err, "score %s %s", userID, typeName)
	}
	return nil
}

func (l *Leaderboard) GetScores(typeName string, mode string, page int, itemCount int) ([]model.LeaderboardModel, error) {
	scores := make([]model.LeaderboardModel, 0)
	if l == nil || l.db == nil {
		return scores, nil
	}

	periods := periodIDs(time.Now())
	typeID, ok := periods[typeName]
	if !ok {
		typeName = LEADERBOARD_OVERALL
		typeID = nil
	}

	var modeQ *string
	if mode != "" && mode != "all" {
		modeQ = &mode
	}

	conn := l.db.Copy()
	defer conn.Close()
	err := conn.DB(l.database).C(model.LeaderboardModel{}.GetCollectionName()).Find(bson.M{
		"type": typeName,
		"mode": modeQ,
		"typeID": typeID,
	}).Sort("-score").Skip(page * itemCount).Limit(itemCount).All(&scores)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return scores, nil
}
