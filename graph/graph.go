// Package graph holds the mutable element graph the alignment passes analyze
// and rewrite: named, typed elements joined by directed connections between
// numbered output and input ports. Connections are killed lazily and
// compacted on demand; the package performs no well-formedness checking.
package graph

import (
	"fmt"
	"strconv"
)

// Element is a processing node. Name is unique within a Router; Type selects
// the element's behavior rule and metadata; Config is the element's
// configuration text, uninterpreted here.
type Element struct {
	Name   string
	Type   string
	Config string

	index int
	dead  bool
}

// Index returns the element's position in its Router. Indexes are stable
// until RemoveDeadElements compacts the element list.
func (e *Element) Index() int { return e.index }

// Dead reports whether the element has been killed but not yet compacted.
func (e *Element) Dead() bool { return e.dead }

// Port names one endpoint of a connection: a port number on an element. The
// same type serves for input and output ports; the containing connection
// determines the direction.
type Port struct {
	Elem *Element
	Port int
}

// Connection is a directed edge from an output port to an input port. A dead
// connection is logically removed but still occupies its slot until
// compaction.
type Connection struct {
	From Port
	To   Port

	dead bool
}

// Live reports whether the connection is still part of the graph.
func (c Connection) Live() bool { return !c.dead }

// Router is the element graph. Multiple connections may share a source
// output port (fan-out) or a destination input port (fan-in).
type Router struct {
	elements []*Element
	byName   map[string]*Element
	conns    []Connection

	anon int // seed for synthetic element names
}

// NewRouter returns an empty graph.
func NewRouter() *Router {
	return &Router{byName: make(map[string]*Element)}
}

// NElements returns the element count, including killed elements not yet
// compacted.
func (r *Router) NElements() int { return len(r.elements) }

// Element returns the element at index i.
func (r *Router) Element(i int) *Element { return r.elements[i] }

// Elements returns the element list. Callers must not reorder it.
func (r *Router) Elements() []*Element { return r.elements }

// Lookup returns the element with the given name, or nil.
func (r *Router) Lookup(name string) *Element { return r.byName[name] }

// GetElement returns the named element, creating it with the given type and
// configuration if absent. An existing element is returned as is, whatever
// its type.
func (r *Router) GetElement(name, typeName, config string) *Element {
	if e, ok := r.byName[name]; ok {
		return e
	}
	e := &Element{Name: name, Type: typeName, Config: config, index: len(r.elements)}
	r.elements = append(r.elements, e)
	r.byName[name] = e
	return e
}

// UniqueName returns a fresh name of the form "prefix@align@N" that no
// current element carries.
func (r *Router) UniqueName(prefix string) string {
	if r.anon <= len(r.elements) {
		r.anon = len(r.elements) + 1
	}
	for {
		name := prefix + "@align@" + strconv.Itoa(r.anon)
		r.anon++
		if r.byName[name] == nil {
			return name
		}
	}
}

// Connections returns the connection list, dead entries included. Indexes
// into this list stay valid until the next compaction.
func (r *Router) Connections() []Connection { return r.conns }

// NConnections returns the connection count, dead entries included.
func (r *Router) NConnections() int { return len(r.conns) }

// Connection returns the connection at index i.
func (r *Router) Connection(i int) Connection { return r.conns[i] }

// AddConnection connects an output port to an input port.
func (r *Router) AddConnection(from, to Port) {
	r.conns = append(r.conns, Connection{From: from, To: to})
}

// KillConnection marks the connection at index i dead.
func (r *Router) KillConnection(i int) { r.conns[i].dead = true }

// ChangeConnectionFrom redirects the source endpoint of connection i.
func (r *Router) ChangeConnectionFrom(i int, from Port) { r.conns[i].From = from }

// ChangeConnectionTo redirects the destination endpoint of connection i.
func (r *Router) ChangeConnectionTo(i int, to Port) { r.conns[i].To = to }

// FindConnectionsTo returns the source ports of all live connections into
// the given input port.
func (r *Router) FindConnectionsTo(to Port) []Port {
	var from []Port
	for _, c := range r.conns {
		if c.Live() && c.To == to {
			from = append(from, c.From)
		}
	}
	return from
}

// FindConnectionsFrom returns the destination ports of all live connections
// out of the given output port.
func (r *Router) FindConnectionsFrom(from Port) []Port {
	var to []Port
	for _, c := range r.conns {
		if c.Live() && c.From == from {
			to = append(to, c.To)
		}
	}
	return to
}

// NInputs returns the element's input port count, derived from its live
// connections: one past the highest connected input port.
func (r *Router) NInputs(e *Element) int {
	n := 0
	for _, c := range r.conns {
		if c.Live() && c.To.Elem == e && c.To.Port >= n {
			n = c.To.Port + 1
		}
	}
	return n
}

// NOutputs returns the element's output port count, derived from its live
// connections.
func (r *Router) NOutputs(e *Element) int {
	n := 0
	for _, c := range r.conns {
		if c.Live() && c.From.Elem == e && c.From.Port >= n {
			n = c.From.Port + 1
		}
	}
	return n
}

// InsertBefore splices e immediately upstream of the input port p: every
// live connection into p is redirected to e's input 0, and e's output 0 is
// connected to p.
func (r *Router) InsertBefore(e *Element, p Port) {
	for i := range r.conns {
		if r.conns[i].Live() && r.conns[i].To == p {
			r.conns[i].To = Port{Elem: e, Port: 0}
		}
	}
	r.AddConnection(Port{Elem: e, Port: 0}, p)
}

// Kill marks an element dead. Its connections stay until
// RemoveDeadElements.
func (r *Router) Kill(e *Element) { e.dead = true }

// RemoveDuplicateConnections kills all but the first of any set of live
// connections sharing both endpoints.
func (r *Router) RemoveDuplicateConnections() {
	seen := make(map[[2]Port]bool, len(r.conns))
	for i := range r.conns {
		if !r.conns[i].Live() {
			continue
		}
		key := [2]Port{r.conns[i].From, r.conns[i].To}
		if seen[key] {
			r.conns[i].dead = true
		}
		seen[key] = true
	}
}

// RemoveDeadElements drops killed elements, kills every connection touching
// them, compacts the dead connections away, and renumbers the survivors.
// It returns the number of elements removed.
func (r *Router) RemoveDeadElements() int {
	removed := 0
	live := r.elements[:0]
	for _, e := range r.elements {
		if e.dead {
			delete(r.byName, e.Name)
			removed++
			continue
		}
		e.index = len(live)
		live = append(live, e)
	}
	r.elements = live
	if removed == 0 {
		r.compactConnections()
		return 0
	}
	for i := range r.conns {
		if r.conns[i].From.Elem.dead || r.conns[i].To.Elem.dead {
			r.conns[i].dead = true
		}
	}
	r.compactConnections()
	return removed
}

func (r *Router) compactConnections() {
	live := r.conns[:0]
	for _, c := range r.conns {
		if c.Live() {
			live = append(live, c)
		}
	}
	r.conns = live
}

// String summarizes the graph for diagnostics.
func (r *Router) String() string {
	nc := 0
	for _, c := range r.conns {
		if c.Live() {
			nc++
		}
	}
	return fmt.Sprintf("router<%d elements, %d connections>", len(r.elements), nc)
}
