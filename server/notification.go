package server

import (
	"github.com/globalsign/mgo"
	"github.com/globalsign/mgo/bson"
	"github.com/tbalthazar/onesignal-go"
	"standoff/model"
)

//onesignal accepts at most this many player ids per request
const pushBatchSize = 2000

//PushService sends mobile push notifications to identities which are not necessarily connected
type PushService struct {
	db *mgo.Session
	database string
	appID string
	client *onesignal.Client
	logger *Logger
}

func NewPushService(db *mgo.Session, config *Config, logger *Logger) *PushService {

	client := onesignal.NewClient(nil)
	client.AppKey = config.NotificationConfig.AppKey

	return &PushService{
		db: db,
		database: config.DBConfig.Database,
		appID: config.NotificationConfig.AppID,
		client: client,
		logger: logger,
	}

}

func (n *PushService) enabled() bool {
	return n != nil && n.db != nil && n.appID != ""
}

func (n *PushService) SendNotificationWithUserIDs(headings map[string]string, body map[string]string, userIDs ...string) {
	if !n.enabled() || len(userIDs) == 0 {
		return
	}

	conn := n.db.Copy()
	defer conn.Close()

	notificationTokens := make([]model.NotificationToken, 0)
	err := conn.DB(n.database).C(model.NotificationToken{}.GetCollectionName()).Find(bson.M{
		"userID": bson.M{
			"$in": userIDs,
		},
	}).All(&notificationTokens)
	if err != nil {
		n.logger.Errorw("Error while fetching all notification tokens belongs to given user ids", "userIDs", userIDs, "error", err)
		return
	}

	tokens := make([]string, 0, len(notificationTokens))
	for _, token := range notificationTokens {
		tokens = append(tokens, token.Token)
	}

	n.SendNotificationWithTokens(headings, body, tokens)
}

func (n *PushService) SendNotificationWithTokens(headings map[string]string, body map[string]string, tokens []string) {
	for _, batch := range pushBatches(tokens, pushBatchSize) {
		notificationReq := &onesignal.NotificationRequest{
			AppID: n.appID,
			Headings: headings,
			Contents: body,
			IncludePlayerIDs: batch,
		}

		if _, _, err := n.client.Notifications.Create(notificationReq); err != nil {
			n.logger.Errorw("Error while creating notification request", "headings", headings, "contents", body, "error", err)
			return
		}
	}
}

func pushBatches(tokens []string, size int) [][]string {
	batches := make([][]string, 0, len(tokens)/size+1)
	for start := 0; start < len(tokens); start += size {
		end := start + size
		if end > len(tokens) {
			end = len(tokens)
		}
		batches = append(batches, tokens[start:end])
	}
	return batches
}
