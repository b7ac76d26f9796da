package region

import (
	"weak"

	"github.com/randalmurphal/tickflow/pkg/tickflow/connect"
	"github.com/randalmurphal/tickflow/pkg/tickflow/port"
)

// ref is a non-owning reference to a region. The zero ref means "no region".
// The id and name are kept so that an expired ref can still be reported.
type ref struct {
	ptr  weak.Pointer[Region]
	id   ID
	name string
	set  bool
}

func refTo(r *Region) ref {
	if r == nil {
		return ref{}
	}
	return ref{ptr: weak.Make(r), id: r.id, name: r.name, set: true}
}

// get resolves the reference. Returns nil for the zero ref and panics with
// a *LifetimeError if the region is gone.
func (x ref) get() *Region {
	if !x.set {
		return nil
	}
	r := x.ptr.Value()
	if r == nil {
		panic(&LifetimeError{ID: x.id, Name: x.name})
	}
	return r
}

func (x ref) label() string {
	if !x.set {
		return ""
	}
	return x.name
}

// Member is anything that belongs to a region.
type Member interface {
	Region() *Region
}

// Aware pairs a port with the region it belongs to. The region reference is
// weak: the region owner controls its lifetime.
type Aware[P port.Port] struct {
	Port   P
	region ref
}

// Bind attaches p to r. Panics if r is nil.
func Bind[P port.Port](r *Region, p P) Aware[P] {
	if r == nil {
		panic("region: cannot bind port to nil region")
	}
	return Aware[P]{Port: p, region: refTo(r)}
}

// Capability implements port.Port.
func (a Aware[P]) Capability() port.Capability {
	return a.Port.Capability()
}

// Region returns the owning region. Panics with a *LifetimeError if the
// region has expired.
func (a Aware[P]) Region() *Region {
	if !a.region.set {
		panic("region: port not bound to a region")
	}
	return a.region.get()
}

// Alive reports whether the owning region still exists.
func (a Aware[P]) Alive() bool {
	return a.region.set && a.region.ptr.Value() != nil
}

// SwitchTick returns the owning region's switch tick.
func (a Aware[P]) SwitchTick() port.EventSource[connect.Void] {
	return a.Region().SwitchTick()
}

// WorkTick returns the owning region's work tick.
func (a Aware[P]) WorkTick() port.EventSource[connect.Void] {
	return a.Region().WorkTick()
}

// SameRegion reports whether a and b belong to the same region, comparing
// region IDs. Panics if either region has expired.
func SameRegion(a, b Member) bool {
	return a.Region().ID() == b.Region().ID()
}
