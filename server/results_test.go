package server

import (
	"standoff/model"
	"testing"
)

func TestPushBatches(t *testing.T) {

	tokens := make([]string, 5)
	batches := pushBatches(tokens, 2)
	if len(batches) != 3 || len(batches[2]) != 1 {
		t.Fatalf("Expected 3 batches but got %d", len(batches))
	}
	if len(pushBatches(nil, 2)) != 0 {
		t.Fatal("No tokens means no batches")
	}

}

func TestRecorderAddsRankedPoints(t *testing.T) {

	config := testConfig(t)
	logger := NewNopLogger()
	profiles := newFakeProfiles()
	sessionHolder := NewSessionHolder(config, nil)
	sessionHolder.add(newFakeSession("u1"))

	recorder := NewResultRecorder(nil, config, NewLeaderboard(nil, config), profiles, NewPushService(nil, config, logger), sessionHolder, logger)

	winner := "u1"
	recorder.RecordMatch(&model.MatchResult{
		MatchID: "m1",
		Mode: MODE_RANKED,
		WinnerID: &winner,
		Participants: []model.ParticipantResult{
			{UserID: "u1", Points: 115},
			{UserID: "u2", Points: 10},
		},
	})
	recorder.RecordMatch(&model.MatchResult{
		MatchID: "m2",
		Mode: MODE_CASUAL,
		Participants: []model.ParticipantResult{{UserID: "u1", Points: 50}},
	})
	recorder.Wait()

	if profiles.added["u1"] != 115 || profiles.added["u2"] != 10 {
		t.Fatalf("Unexpected ranked points %v", profiles.added)
	}
	if profiles.tokens["u1"] != "token-u1" || profiles.tokens["u2"] != "" {
		t.Fatal("Token of connected identity should be passed through")
	}

}

func TestPubSubLocalDelivery(t *testing.T) {

	config := testConfig(t)
	sessionHolder := NewSessionHolder(config, nil)
	s1 := newFakeSession("u1")
	sessionHolder.add(s1)

	ps, err := NewPubSub(config, sessionHolder, NewNopLogger(), nil)
	if err != nil {
		t.Fatal(err)
	}

	missing := ps.deliver(&PubSubMessage{UserIDs: []string{"u1", "u2"}, Data: &Envelope{Cid: "x"}})
	if len(missing) != 1 || missing[0] != "u2" {
		t.Fatalf("Expected u2 to be reported missing but got %v", missing)
	}
	if last := s1.last(); last == nil || last.Cid != "x" {
		t.Fatal("Connected identity should receive message")
	}

	if err := ps.Send(&PubSubMessage{UserIDs: []string{"u2"}, Data: &Envelope{}}); err != nil {
		t.Fatal("Disabled pubsub should not fail", err)
	}

}
