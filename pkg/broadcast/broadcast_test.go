package broadcast

import (
	"errors"
	"testing"

	"github.com/zeusync/entitykit/pkg/registry"
)

// counter records every notification it receives.
type counter struct {
	calls    int
	messages []string
	payloads []any
}

func (c *counter) Notify(message string, payload any) error {
	c.calls++
	c.messages = append(c.messages, message)
	c.payloads = append(c.payloads, payload)
	return nil
}

// faulty always fails.
type faulty struct {
	calls int
	err   error
}

func (f *faulty) Notify(string, any) error {
	f.calls++
	return f.err
}

// attacher adds a component to its entity while handling a notification.
type attacher struct {
	target registry.Entity
	child  *counter
}

func (a *attacher) Notify(string, any) error {
	a.target.Owner().Attach(a.target, a.child)
	return nil
}

type testObserver struct {
	broadcasts int
	entities   int
	notified   int
	lastErr    error
}

func (o *testObserver) OnBroadcast(_ string, entities int) {
	o.broadcasts++
	o.entities = entities
}

func (o *testObserver) OnDelivered(_ string, notified int, err error, _ int64) {
	o.notified += notified
	o.lastErr = err
}

func TestBroadcastReachesEveryComponentOnce(t *testing.T) {
	r := registry.New()
	e1 := r.Create("e1")
	e2 := r.Create("e2")

	c1 := &counter{}
	c2 := &faulty{} // second component type on e1, nil error
	c3 := &counter{}
	r.Attach(e1, c1)
	r.Attach(e1, c2)
	r.Attach(e2, c3)

	if err := New().Broadcast(r, "tick", 1); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if c1.calls != 1 || c2.calls != 1 || c3.calls != 1 {
		t.Fatalf("expected one notification per pair, got %d %d %d", c1.calls, c2.calls, c3.calls)
	}
	if c1.messages[0] != "tick" || c1.payloads[0] != 1 {
		t.Fatalf("unexpected message/payload: %v %v", c1.messages, c1.payloads)
	}
}

func TestBroadcastIsolatesHandlerFailures(t *testing.T) {
	r := registry.New()
	e1 := r.Create("e1")
	e2 := r.Create("e2")

	boom := errors.New("boom")
	good1 := &counter{}
	bad := &faulty{err: boom}
	good2 := &counter{}
	r.Attach(e1, good1)
	r.Attach(e1, bad)
	r.Attach(e2, good2)

	err := New().Broadcast(r, "msg", nil)
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("aggregated error should wrap handler failure, got %v", err)
	}
	// the failure must not abort delivery: 3 notifications total
	if got := good1.calls + bad.calls + good2.calls; got != 3 {
		t.Fatalf("expected 3 notifications, got %d", got)
	}
}

func TestBroadcastNilRegistryIsNoOp(t *testing.T) {
	if err := New().Broadcast(nil, "msg", nil); err != nil {
		t.Fatalf("nil registry must be a no-op, got %v", err)
	}
}

func TestBroadcastSnapshotExcludesMidBroadcastAttaches(t *testing.T) {
	r := registry.New()
	e := r.Create("e")
	child := &counter{}
	r.Attach(e, &attacher{target: e, child: child})

	if err := New().Broadcast(r, "spawn", nil); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if child.calls != 0 {
		t.Fatalf("component attached mid-broadcast must not be visited, got %d calls", child.calls)
	}

	// the next broadcast picks it up
	if err := New().Broadcast(r, "spawn", nil); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if child.calls != 1 {
		t.Fatalf("expected 1 call on next broadcast, got %d", child.calls)
	}
}

func TestBroadcastEntitiesInRegistrationOrder(t *testing.T) {
	r := registry.New()
	order := make([]string, 0, 2)

	first := &orderProbe{name: "first", sink: &order}
	second := &orderProbe{name: "second", sink: &order}
	r.Attach(r.Create("a"), first)
	r.Attach(r.Create("b"), second)

	if err := Broadcast(r, "msg", nil); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected visit order: %v", order)
	}
}

type orderProbe struct {
	name string
	sink *[]string
}

func (p *orderProbe) Notify(string, any) error {
	*p.sink = append(*p.sink, p.name)
	return nil
}

func TestObserversAndMetrics(t *testing.T) {
	r := registry.New()
	e := r.Create("e")
	r.Attach(e, &counter{})
	r.Attach(e, &faulty{err: errors.New("fail")})

	b := New()
	obs := &testObserver{}
	b.AddObserver(obs)

	_ = b.Broadcast(r, "msg", nil)

	if obs.broadcasts != 1 || obs.entities != 1 {
		t.Fatalf("observer saw %d broadcasts over %d entities", obs.broadcasts, obs.entities)
	}
	if obs.notified != 2 {
		t.Fatalf("observer saw %d notifications, want 2", obs.notified)
	}
	if obs.lastErr == nil {
		t.Fatal("observer should see the aggregated error")
	}

	m := b.GetMetrics()
	if m.Broadcasts != 1 || m.Notified != 2 || m.Failures != 1 {
		t.Fatalf("unexpected metrics: %+v", m)
	}

	b.RemoveObserver(obs)
	_ = b.Broadcast(r, "msg", nil)
	if obs.broadcasts != 1 {
		t.Fatal("removed observer must not be called")
	}
}
