package server

import "testing"

func TestMatchmakerJoinsOpenMatch(t *testing.T) {

	game := newFakeGame("g")
	mm := NewLocalMatchMaker(nil, NewNopLogger())

	first, err := mm.Find(newFakeSession("u1"), game, MODE_CASUAL)
	if err != nil {
		t.Fatal(err)
	}
	second, err := mm.Find(newFakeSession("u2"), game, MODE_CASUAL)
	if err != nil {
		t.Fatal(err)
	}

	if game.created != 1 {
		t.Fatalf("Expected single match to be created but got %d", game.created)
	}
	if second.ID != first.ID || len(second.Players) != 2 {
		t.Fatal("Second session should join the open match")
	}

}

func TestMatchmakerSkipsRejectingMatches(t *testing.T) {

	game := newFakeGame("g")
	mm := NewLocalMatchMaker(nil, NewNopLogger())

	open, _ := game.CreateMatch(newFakeSession("u1"), MODE_CASUAL, MatchOptions{})
	game.joinErr[open.ID] = ErrAlreadyStarted

	summary, err := mm.Find(newFakeSession("u2"), game, MODE_CASUAL)
	if err != nil {
		t.Fatal(err)
	}
	if summary.ID == open.ID || game.created != 2 {
		t.Fatal("Started match should be skipped and a new one created")
	}

	//other modes are never joined
	ranked, err := mm.Find(newFakeSession("u3"), game, MODE_RANKED)
	if err != nil {
		t.Fatal(err)
	}
	if ranked.Mode != MODE_RANKED || len(ranked.Players) != 1 {
		t.Fatal("Expected fresh ranked match")
	}

}

func TestMatchmakerQueueKey(t *testing.T) {
	mm := &LocalMatchmaker{}
	if key := mm.generateQueueKey("standoff", MODE_RANKED); key != "gq:standoff:ranked" {
		t.Fatalf("Unexpected queue key %s", key)
	}
}
