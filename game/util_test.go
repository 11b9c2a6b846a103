package game

import (
	"github.com/pkg/errors"
	"standoff/model"
	"standoff/server"
	"strconv"
	"sync"
	"testing"
	"time"
)

type fakeSubscriber struct {
	sync.Mutex
	id string
	name string
	notifications []*server.Notification
}

func newSubscriber(id string) *fakeSubscriber {
	return &fakeSubscriber{id: id, name: "name-" + id}
}

func (s *fakeSubscriber) UserID() string {
	return s.id
}

func (s *fakeSubscriber) Username() string {
	return s.name
}

func (s *fakeSubscriber) Notify(n *server.Notification) error {
	s.Lock()
	s.notifications = append(s.notifications, n)
	s.Unlock()
	return nil
}

func (s *fakeSubscriber) count(kind server.NotificationKind) int {
	s.Lock()
	defer s.Unlock()
	c := 0
	for _, n := range s.notifications {
		if n.Kind == kind {
			c++
		}
	}
	return c
}

func (s *fakeSubscriber) last(kind server.NotificationKind) *server.Notification {
	s.Lock()
	defer s.Unlock()
	for i := len(s.notifications) - 1; i >= 0; i-- {
		if s.notifications[i].Kind == kind {
			return s.notifications[i]
		}
	}
	return nil
}

func (s *fakeSubscriber) reset() {
	s.Lock()
	s.notifications = nil
	s.Unlock()
}

type fakeClock struct {
	sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1500000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.Lock()
	defer c.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.Lock()
	defer c.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

//fixedRoller always picks the same index and rolls the same value
type fixedRoller struct {
	pick int
	roll float64
}

func (r fixedRoller) Intn(n int) int {
	return r.pick % n
}

func (r fixedRoller) Float64() float64 {
	return r.roll
}

type failingAllocator struct{}

func (failingAllocator) Allocate(name string) error {
	return errors.Wrap(server.ErrContextAllocation, "no capacity")
}

func (failingAllocator) Release(name string) {}

type recordedResults struct {
	sync.Mutex
	results []*model.MatchResult
}

func (r *recordedResults) RecordMatch(result *model.MatchResult) {
	r.Lock()
	r.results = append(r.results, result)
	r.Unlock()
}

type testEnv struct {
	registry *Registry
	clock *fakeClock
	partitioner *server.Partitioner
	contexts *server.ContextHolder
	results *recordedResults
}

func testConfig() *server.Config {
	config := &server.Config{}
	config.ContextConfig.TemplateName = "lobby"
	config.ContextConfig.Prefix = "match-"
	config.ContextConfig.MaxContexts = 10
	return config
}

func testRules() Rules {
	rules := DefaultRules()
	rules.RoundDuration = 10 * time.Second
	rules.IntermissionDuration = time.Second
	return rules
}

func newTestEnv(t *testing.T, rules Rules, roller Roller) *testEnv {
	t.Helper()
	config := testConfig()
	env := &testEnv{
		clock: newFakeClock(),
		partitioner: server.NewPartitioner(config),
		contexts: server.NewContextHolder(config, nil),
		results: &recordedResults{},
	}
	ids := 0
	env.registry = NewRegistry("standoff", rules, env.partitioner, env.contexts, Options{
		Clock: env.clock,
		NewRoller: func() Roller {
			return roller
		},
		NewMatchID: func() string {
			ids++
			return "m" + strconv.Itoa(ids)
		},
		Recorder: env.results,
	}, server.NewNopLogger())
	return env
}

func connOf(s *fakeSubscriber) string {
	return "conn-" + s.id
}

//startMatch creates a match with given players, readies everyone and returns the running match
func (env *testEnv) startMatch(t *testing.T, subs ...*fakeSubscriber) *Match {
	t.Helper()
	m, err := env.registry.CreateMatch(server.MODE_CASUAL, subs[0], connOf(subs[0]), server.MatchOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range subs[1:] {
		if _, err := env.registry.JoinMatch(m.ID(), s, connOf(s)); err != nil {
			t.Fatal(err)
		}
	}
	for _, s := range subs {
		if _, err := env.registry.ToggleReady(s.id); err != nil {
			t.Fatal(err)
		}
	}
	if m.State() != MATCH_IN_PROGRESS {
		t.Fatalf("expected match in progress, got %s", m.State())
	}
	return m
}

func (env *testEnv) submit(t *testing.T, s *fakeSubscriber, kind server.ActionKind, target *fakeSubscriber) {
	t.Helper()
	req := server.ActionRequest{Kind: kind}
	if target != nil {
		req.TargetID = target.id
	}
	if err := env.registry.SubmitAction(s.id, req); err != nil {
		t.Fatalf("%s %s: %v", s.id, kind, err)
	}
}

//nextRound expires whatever phase is running until the following round is collecting
func (env *testEnv) nextRound(t *testing.T, m *Match) {
	t.Helper()
	round := m.Round()
	for i := 0; i < 4 && m.Round() == round; i++ {
		if m.Phase() == PHASE_MATCH_OVER {
			t.Fatal("match is already over")
		}
		m.Tick(env.clock.Advance(m.rules.RoundDuration + m.rules.IntermissionDuration))
	}
	if m.Phase() != PHASE_COLLECTING {
		t.Fatalf("expected collecting phase, got %s", m.Phase())
	}
}

func mustParticipant(t *testing.T, m *Match, id string) Participant {
	t.Helper()
	p, ok := m.Participant(id)
	if !ok {
		t.Fatalf("participant %s not found", id)
	}
	return p
}
