package server

import "testing"

type testEntity string

func (e testEntity) ContextName() string {
	return string(e)
}

func TestPartitionerRegisterKeepsTemplate(t *testing.T) {

	p := NewPartitioner(testConfig(t))
	match := testEntity(p.ContextName("m1"))
	template := testEntity("lobby")

	p.RegisterConnection("c1", string(match))

	if !p.CanObserve(template, "c1") {
		t.Fatal("Registered connection should still observe template context")
	}
	if !p.CanObserve(match, "c1") {
		t.Fatal("Registered connection should observe its match context through mapping")
	}
	if p.CanObserve(testEntity(p.ContextName("m2")), "c1") {
		t.Fatal("Connection must not observe other match contexts")
	}
	if p.CanObserve(match, "c2") {
		t.Fatal("Unknown connection must not observe anything")
	}

}

func TestPartitionerMoveConnection(t *testing.T) {

	p := NewPartitioner(testConfig(t))
	first := p.ContextName("m1")
	second := p.ContextName("m2")

	p.RegisterConnection("c1", first)
	p.MoveConnection("c1", second)

	if p.CanObserve(testEntity(first), "c1") {
		t.Fatal("Moved connection must not observe previous context")
	}
	if p.CanObserve(testEntity("lobby"), "c1") {
		t.Fatal("Moved connection must leave template context")
	}
	if !p.CanObserve(testEntity(second), "c1") {
		t.Fatal("Moved connection should observe new context")
	}
	if name, ok := p.ContextOf("c1"); !ok || name != second {
		t.Fatalf("Expected context %s but got %s", second, name)
	}

}

func TestPartitionerUnregister(t *testing.T) {

	p := NewPartitioner(testConfig(t))
	name := p.ContextName("m1")

	p.MoveConnection("c1", name)
	p.MoveConnection("c2", name)
	p.RegisterConnection("c3", p.ContextName("m2"))

	//unknown connections are ignored
	p.Unregister("missing")

	p.Unregister("c2")
	if p.CanObserve(testEntity(name), "c2") {
		t.Fatal("Unregistered connection must not observe anything")
	}

	if dropped := p.UnregisterContext(name); dropped != 1 {
		t.Fatalf("Expected 1 dropped connection but got %d", dropped)
	}
	if p.Count() != 1 {
		t.Fatalf("Expected 1 remaining connection but got %d", p.Count())
	}
	if p.CanObserve(nil, "c3") {
		t.Fatal("Nil entity can not be observed")
	}

}
