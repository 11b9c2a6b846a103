package model

//ParticipantStats are the cumulative counters of one participant in one match
type ParticipantStats struct {
	Kills int `bson:"kills" json:"kills"`
	ShotsFired int `bson:"shots_fired" json:"shots_fired"`
	Reloads int `bson:"reloads" json:"reloads"`
	DamageDealt int `bson:"damage_dealt" json:"damage_dealt"`
	TimesCovered int `bson:"times_covered" json:"times_covered"`
}

//Points is the score leaderboards are built on. Do not change it, stored scores depend on it.
func (s ParticipantStats) Points() int64 {
	return int64(s.Kills)*100 + int64(s.Reloads+s.ShotsFired+s.DamageDealt+s.TimesCovered)*5
}
