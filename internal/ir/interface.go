package ir

// Interface is an ordered mapping name -> *Variable: declaration order is
// preserved because parameter-passing and printing both depend on it.
type Interface struct {
	order []string
	byName map[string]*Variable
}

// NewInterface returns an empty, ready-to-use Interface.
func NewInterface() *Interface {
	return &Interface{byName: make(map[string]*Variable)}
}

// Add appends v, replacing any existing entry of the same name in place
// (order is preserved on redefinition).
func (i *Interface) Add(v *Variable) {
	if _, exists := i.byName[v.Name]; !exists {
		i.order = append(i.order, v.Name)
	}
	i.byName[v.Name] = v
}

// Remove deletes the named variable, if present.
func (i *Interface) Remove(name string) {
	if _, ok := i.byName[name]; !ok {
		return
	}
	delete(i.byName, name)
	for idx, n := range i.order {
		if n == name {
			i.order = append(i.order[:idx], i.order[idx+1:]...)
			break
		}
	}
}

// Lookup returns the variable named name, if any.
func (i *Interface) Lookup(name string) (*Variable, bool) {
	v, ok := i.byName[name]
	return v, ok
}

// Names returns the declaration-ordered variable names.
func (i *Interface) Names() []string {
	out := make([]string, len(i.order))
	copy(out, i.order)
	return out
}

// Variables returns the declaration-ordered variables.
func (i *Interface) Variables() []*Variable {
	out := make([]*Variable, 0, len(i.order))
	for _, n := range i.order {
		out = append(out, i.byName[n])
	}
	return out
}

func (i *Interface) Len() int { return len(i.order) }

// Clone returns a deep copy with independent Variable pointers.
func (i *Interface) Clone() *Interface {
	c := NewInterface()
	for _, n := range i.order {
		c.Add(i.byName[n].Clone())
	}
	return c
}

// FlatField is one entry of a flattened interface: a dotted path to a
// primitive-typed field together with its scalar DataType.
type FlatField struct {
	Name string
	Type DataType
}

// TypeResolver looks up the field interface of a Derived function-block
// type by name; the cfg package's Project implements it.
type TypeResolver interface {
	InterfaceOf(fbTypeName string) (*Interface, bool)
}

// Flatten expands every Derived-typed field inline: a field `f : Fb1` whose
// Fb1 interface declares `x : BOOL` contributes `f.x : BOOL`. Scalar fields
// are passed through unchanged. Expansion recurses through nested Derived
// fields, so a field of a field is fully dotted out.
func (i *Interface) Flatten(resolve TypeResolver) []FlatField {
	var out []FlatField
	for _, n := range i.order {
		v := i.byName[n]
		flattenInto(&out, n, v.Type, resolve)
	}
	return out
}

func flattenInto(out *[]FlatField, prefix string, t DataType, resolve TypeResolver) {
	if t.Kind != DerivedKind {
		*out = append(*out, FlatField{Name: prefix, Type: t})
		return
	}
	fbIface, ok := resolve.InterfaceOf(t.DerivedFB)
	if !ok {
		// Unresolved FB type: surface as a single inconclusive field rather
		// than silently dropping the variable from the flattened interface.
		*out = append(*out, FlatField{Name: prefix, Type: Inconclusive()})
		return
	}
	for _, fn := range fbIface.order {
		fv := fbIface.byName[fn]
		flattenInto(out, prefix+"."+fn, fv.Type, resolve)
	}
}
