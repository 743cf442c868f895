package session

// Gate is the one-shot history suppressor of an ephemeral session. When
// armed, the first question load observes "suppress" and every later load
// does not. A gate that is not armed never suppresses.
type Gate struct {
	armed    bool
	consumed bool
}

// NewGate returns a gate armed iff the session entered an ephemeral
// progression.
func NewGate(ephemeral bool) *Gate {
	return &Gate{armed: ephemeral}
}

// Observe reports whether the current load must hide prior answer history,
// and consumes the gate.
func (g *Gate) Observe() bool {
	suppress := g.armed && !g.consumed
	if g.armed {
		g.consumed = true
	}
	return suppress
}

// Pending reports whether the next Observe would suppress, without
// consuming the gate.
func (g *Gate) Pending() bool {
	return g.armed && !g.consumed
}

// Armed reports whether the gate was armed on entry.
func (g *Gate) Armed() bool { return g.armed }

// Consumed reports whether the gate already fired.
func (g *Gate) Consumed() bool { return g.consumed }
