package game

import (
	"github.com/pkg/errors"
	"standoff/server"
	"testing"
)

func TestAdminReassignedOnLeave(t *testing.T) {
	env := newTestEnv(t, testRules(), fixedRoller{})
	a := newSubscriber("a")
	b := newSubscriber("b")
	c := newSubscriber("c")

	m, err := env.registry.CreateMatch(server.MODE_CASUAL, a, connOf(a), server.MatchOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []*fakeSubscriber{b, c} {
		if _, err := env.registry.JoinMatch(m.ID(), s, connOf(s)); err != nil {
			t.Fatal(err)
		}
	}
	b.reset()
	c.reset()

	if err := env.registry.LeaveMatch("a"); err != nil {
		t.Fatal(err)
	}

	if m.AdminID() != "b" {
		t.Fatalf("earliest remaining member should be admin, got %s", m.AdminID())
	}
	for _, s := range []*fakeSubscriber{b, c} {
		if s.count(server.NOTIFICATION_ROSTER_UPDATED) != 1 {
			t.Fatalf("%s should receive exactly one roster update, got %d", s.id, s.count(server.NOTIFICATION_ROSTER_UPDATED))
		}
		if n := s.last(server.NOTIFICATION_ROSTER_UPDATED); n.AdminID != "b" {
			t.Fatalf("roster update should name new admin, got %s", n.AdminID)
		}
	}
	if a.count(server.NOTIFICATION_ROSTER_UPDATED) != 3 {
		t.Fatal("leaving member should not receive updates after leaving")
	}
}

func TestKick(t *testing.T) {
	env := newTestEnv(t, testRules(), fixedRoller{})
	a := newSubscriber("a")
	b := newSubscriber("b")
	c := newSubscriber("c")

	m, err := env.registry.CreateMatch(server.MODE_CASUAL, a, connOf(a), server.MatchOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []*fakeSubscriber{b, c} {
		if _, err := env.registry.JoinMatch(m.ID(), s, connOf(s)); err != nil {
			t.Fatal(err)
		}
	}

	if err := env.registry.Kick("b", "c"); errors.Cause(err) != server.ErrNotAdmin {
		t.Fatalf("expected not admin, got %v", err)
	}
	if err := env.registry.Kick("a", "a"); errors.Cause(err) != server.ErrNotAllowedSelf {
		t.Fatalf("expected self kick rejection, got %v", err)
	}
	if err := env.registry.Kick("a", "c"); err != nil {
		t.Fatal(err)
	}

	if c.count(server.NOTIFICATION_KICKED) != 1 {
		t.Fatal("kicked member should be told")
	}
	if _, ok := m.Participant("c"); ok {
		t.Fatal("kicked member should leave roster")
	}
	if _, ok := env.registry.MatchOf("c"); ok {
		t.Fatal("kicked member should be free to join elsewhere")
	}
	if _, ok := env.partitioner.ContextOf(connOf(c)); ok {
		t.Fatal("kicked connection should be unregistered")
	}
}

func TestStartHappensOnce(t *testing.T) {
	env := newTestEnv(t, testRules(), fixedRoller{})
	a := newSubscriber("a")
	b := newSubscriber("b")
	m := env.startMatch(t, a, b)

	if !m.CheckAllReady() {
		t.Fatal("everyone is still ready")
	}
	if a.count(server.NOTIFICATION_MATCH_STARTED) != 1 {
		t.Fatalf("expected one start notification, got %d", a.count(server.NOTIFICATION_MATCH_STARTED))
	}
	if m.started.Load() != 1 {
		t.Fatal("start guard should be set")
	}
	if _, err := env.registry.ToggleReady("a"); errors.Cause(err) != server.ErrAlreadyStarted {
		t.Fatalf("expected already started, got %v", err)
	}

	if name, _ := env.partitioner.ContextOf(connOf(a)); name != m.ContextName() {
		t.Fatalf("connection should be moved into match context, got %s", name)
	}
	if env.partitioner.CanObserve(m, "conn-outsider") {
		t.Fatal("unknown connection should not observe the match")
	}

	p := mustParticipant(t, m, "a")
	if !p.Alive || p.Health != m.rules.StartingHealth || p.Ammo != m.rules.StartingAmmo {
		t.Fatalf("participant not initialised: %+v", p)
	}
	if n := a.last(server.NOTIFICATION_ROUND_STARTED); n == nil || n.Round != 1 || n.Duration != 10000 {
		t.Fatalf("expected first round to start, got %+v", n)
	}
}

func TestNotReadyUntilMinPlayers(t *testing.T) {
	env := newTestEnv(t, testRules(), fixedRoller{})
	a := newSubscriber("a")

	m, err := env.registry.CreateMatch(server.MODE_CASUAL, a, connOf(a), server.MatchOptions{})
	if err != nil {
		t.Fatal(err)
	}
	summary, err := env.registry.ToggleReady("a")
	if err != nil {
		t.Fatal(err)
	}
	if summary.State != server.MATCH_STATE_LOBBY || !summary.Players[0].Ready {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if m.CheckAllReady() {
		t.Fatal("single player should not be enough")
	}

	summary, _ = env.registry.ToggleReady("a")
	if summary.Players[0].Ready {
		t.Fatal("ready should toggle back")
	}
}

func TestStartFailsWhenContextUnavailable(t *testing.T) {
	partitioner := server.NewPartitioner(testConfig())
	registry := NewRegistry("standoff", testRules(), partitioner, failingAllocator{}, Options{Clock: newFakeClock()}, server.NewNopLogger())
	a := newSubscriber("a")
	b := newSubscriber("b")

	m, err := registry.CreateMatch(server.MODE_CASUAL, a, connOf(a), server.MatchOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := registry.JoinMatch(m.ID(), b, connOf(b)); err != nil {
		t.Fatal(err)
	}
	registry.ToggleReady("a")
	registry.ToggleReady("b")

	if m.State() != MATCH_LOBBY {
		t.Fatalf("match should stay in lobby, got %s", m.State())
	}
	if m.started.Load() != 0 {
		t.Fatal("start guard should be rolled back")
	}
	for _, s := range []*fakeSubscriber{a, b} {
		n := s.last(server.NOTIFICATION_MATCH_START_FAILED)
		if n == nil || n.Reason == "" {
			t.Fatalf("%s should be told about the failure", s.id)
		}
	}

	c := newSubscriber("c")
	if _, err := registry.JoinMatch(m.ID(), c, connOf(c)); err != nil {
		t.Fatalf("match should stay joinable: %v", err)
	}
}

func TestLobbyDisconnectIsLeave(t *testing.T) {
	env := newTestEnv(t, testRules(), fixedRoller{})
	a := newSubscriber("a")
	b := newSubscriber("b")

	m, err := env.registry.CreateMatch(server.MODE_CASUAL, a, connOf(a), server.MatchOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.registry.JoinMatch(m.ID(), b, connOf(b)); err != nil {
		t.Fatal(err)
	}

	env.registry.Disconnect("a", "conn-stale")
	if _, ok := m.Participant("a"); !ok {
		t.Fatal("disconnect of an unknown connection should be ignored")
	}

	env.registry.Disconnect("a", connOf(a))
	if _, ok := m.Participant("a"); ok {
		t.Fatal("lobby disconnect should remove participant")
	}
	if m.AdminID() != "b" {
		t.Fatalf("admin should move to b, got %s", m.AdminID())
	}
}

func TestLeaveDuringRoundFastForwards(t *testing.T) {
	env := newTestEnv(t, testRules(), fixedRoller{})
	a := newSubscriber("a")
	b := newSubscriber("b")
	c := newSubscriber("c")
	m := env.startMatch(t, a, b, c)

	env.submit(t, a, server.ACTION_RELOAD, nil)
	env.submit(t, b, server.ACTION_COVER, nil)
	if m.Phase() != PHASE_COLLECTING {
		t.Fatal("round should wait for c")
	}

	if err := env.registry.LeaveMatch("c"); err != nil {
		t.Fatal(err)
	}
	if m.Phase() != PHASE_INTERMISSION {
		t.Fatalf("round should resolve once c left, got %s", m.Phase())
	}
	if a.count(server.NOTIFICATION_ACTION_RESOLVED) != 1 {
		t.Fatal("remaining members should get the round summary")
	}
	if c.count(server.NOTIFICATION_ACTION_RESOLVED) != 0 {
		t.Fatal("departed member should not get the round summary")
	}
}

func TestLeaveDuringMatchEndsIt(t *testing.T) {
	env := newTestEnv(t, testRules(), fixedRoller{})
	a := newSubscriber("a")
	b := newSubscriber("b")
	m := env.startMatch(t, a, b)

	env.submit(t, b, server.ACTION_COVER, nil)
	if err := env.registry.LeaveMatch("b"); err != nil {
		t.Fatal(err)
	}

	if m.State() != MATCH_FINISHED {
		t.Fatalf("match should finish, got %s", m.State())
	}
	over := a.last(server.NOTIFICATION_MATCH_OVER)
	if over == nil || over.WinnerID != "a" || over.Draw {
		t.Fatalf("a should win, got %+v", over)
	}

	if len(env.results.results) != 1 {
		t.Fatal("result should be recorded")
	}
	result := env.results.results[0]
	if len(result.Participants) != 2 {
		t.Fatalf("departed participant should keep its stats in result, got %d", len(result.Participants))
	}
	if result.Participants[1].UserID != "b" || result.Participants[1].Survived {
		t.Fatalf("unexpected departed result %+v", result.Participants[1])
	}
}
