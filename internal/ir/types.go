package ir

import (
	"encoding/json"
	"strings"
)

// ReturnKey is the name every returns entry carries, regardless of how the
// source representation spelled it.
const ReturnKey = "return_type"

// Kind is the binding kind of a callable.
type Kind string

const (
	KindUnset      Kind = ""
	KindInstance   Kind = "instance"   // receiver is self
	KindClassLevel Kind = "classlevel" // receiver is cls, or a type declaration
	KindStatic     Kind = "static"     // no receiver
)

// Param is one named parameter (or the returns entry).
type Param struct {
	Name     string `json:"name"`
	Type     string `json:"typ,omitempty"`     // textual type expression
	Doc      string `json:"doc,omitempty"`
	Default  Value  `json:"-"`                 // nil when unset
	Required *bool  `json:"required,omitempty"` // nil when undetermined
}

// MarshalJSON emits the default as a plain JSON value.
func (p Param) MarshalJSON() ([]byte, error) {
	type alias Param
	out := struct {
		alias
		Default any `json:"default,omitempty"`
	}{alias: alias(p)}
	if p.Default != nil {
		out.Default = jsonValue(p.Default)
	}
	return json.Marshal(out)
}

// Clone returns a deep copy of p.
func (p *Param) Clone() *Param {
	if p == nil {
		return nil
	}
	c := *p
	if p.Required != nil {
		r := *p.Required
		c.Required = &r
	}
	return &c
}

// HasDefault reports whether p carries a default other than None.
func (p *Param) HasDefault() bool {
	return !IsNone(p.Default)
}

// IsRequired reports the resolved required flag (false when undetermined).
func (p *Param) IsRequired() bool {
	return p.Required != nil && *p.Required
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

// IsCatchAll reports whether name denotes a variadic keyword parameter.
// By convention those names end in "kwargs".
func IsCatchAll(name string) bool {
	return strings.HasSuffix(name, "kwargs")
}

// IsOptionalType reports whether typ is an Optional[...] wrapper.
func IsOptionalType(typ string) bool {
	typ = strings.TrimSpace(typ)
	return strings.HasPrefix(typ, "Optional[") && strings.HasSuffix(typ, "]")
}

// Params is an ordered collection of uniquely named parameters.
// The zero value is an empty collection.
type Params []*Param

// Get returns the param named name, or nil.
func (ps Params) Get(name string) *Param {
	if i := ps.index(name); i >= 0 {
		return ps[i]
	}
	return nil
}

// Has reports whether a param named name exists.
func (ps Params) Has(name string) bool {
	return ps.index(name) >= 0
}

// Set replaces the param with the same name in place, or appends p.
func (ps *Params) Set(p *Param) {
	if i := ps.index(p.Name); i >= 0 {
		(*ps)[i] = p
		return
	}
	*ps = append(*ps, p)
}

// Delete removes the param named name and returns it (nil when absent).
func (ps *Params) Delete(name string) *Param {
	i := ps.index(name)
	if i < 0 {
		return nil
	}
	p := (*ps)[i]
	*ps = append((*ps)[:i:i], (*ps)[i+1:]...)
	return p
}

// MoveToEnd relocates the param named name to the last position.
func (ps *Params) MoveToEnd(name string) {
	if p := ps.Delete(name); p != nil {
		*ps = append(*ps, p)
	}
}

// Names returns param names in order.
func (ps Params) Names() []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}

// Clone returns a deep copy.
func (ps Params) Clone() Params {
	if ps == nil {
		return nil
	}
	out := make(Params, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out
}

func (ps Params) index(name string) int {
	for i, p := range ps {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// IR is the canonical, view-agnostic description of a callable.
type IR struct {
	Name     string    `json:"name,omitempty"`
	Kind     Kind      `json:"type,omitempty"`
	ShortDoc string    `json:"short_description"`
	LongDoc  string    `json:"long_description,omitempty"`
	Params   Params    `json:"params"`
	Returns  *Param    `json:"returns,omitempty"`
	Internal *Internal `json:"-"`
}

// New returns an empty IR named name.
func New(name string) *IR {
	return &IR{Name: name, Params: Params{}}
}

// Clone returns a deep copy. The Internal payload is shared, not copied:
// it is opaque and never mutated.
func (r *IR) Clone() *IR {
	if r == nil {
		return nil
	}
	c := *r
	c.Params = r.Params.Clone()
	c.Returns = r.Returns.Clone()
	return &c
}

// Normalize resolves the required flag of every param:
//   - a param with a default is never required
//   - an Optional[...] type is never required
//   - a catch-all param is never required
//   - a None default is never required
//   - otherwise an explicit flag is kept, and an undetermined one becomes true
//
// A default of None is not stored, but it marks the param as not required so
// that emitters write it back as "= None".
func (r *IR) Normalize() *IR {
	for _, p := range r.Params {
		if p.Default != nil && IsNone(p.Default) {
			p.Default = nil
			p.Required = BoolPtr(false)
		}
		switch {
		case p.HasDefault(), IsOptionalType(p.Type), IsCatchAll(p.Name):
			p.Required = BoolPtr(false)
		case p.Required == nil:
			p.Required = BoolPtr(true)
		}
	}
	if r.Returns != nil {
		r.Returns.Name = ReturnKey
		r.Returns.Required = nil
	}
	return r
}

// Internal is an opaque body payload attached by a parse of concrete syntax.
// It is only ever released to the view that created it.
type Internal struct {
	owner   string
	payload any
}

// NewInternal attaches payload to the named owner view.
func NewInternal(owner string, payload any) *Internal {
	return &Internal{owner: owner, payload: payload}
}

// For returns the payload when owner created it.
func (in *Internal) For(owner string) (any, bool) {
	if in == nil || in.owner != owner {
		return nil, false
	}
	return in.payload, true
}

// Owner returns the view name that attached the payload.
func (in *Internal) Owner() string {
	if in == nil {
		return ""
	}
	return in.owner
}
