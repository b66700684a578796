package statevector

import (
	"github.com/sirupsen/logrus"

	"j5.nz/surefire/errs"
	"j5.nz/surefire/scalar"
)

// ElementSpec describes one element to be laid out by BuildWithRegions
// or BuildFlat, in the
// order it must occupy backing storage.
type ElementSpec struct {
	Name string
	Kind scalar.Kind
}

// RegionSpec describes one named region and the ordered elements that
// exactly span it.
type RegionSpec struct {
	Name     string
	Elements []ElementSpec
}

type elementEntry struct {
	kind scalar.Kind
	off  int
}

type regionEntry struct {
	off  int
	size int
}

// StateVector is the configured, immutable table of named elements
// and named regions. The zero value is an "uninitialized" state
// vector: every lookup on it fails with Uninitialized, matching the
// "partial construction is forbidden" policy.
type StateVector struct {
	built    bool
	backing  []byte
	elements map[string]elementEntry
	elemSeq  []string // element names in declared order
	regions  map[string]regionEntry
}

// BuildWithRegions lays out elements grouped under named regions (the
// state-vector config flavor) and validates that each region's byte
// range is exactly covered by its elements. A region with zero
// elements is rejected with CfgEmptyRegion; duplicate element or
// region names are rejected with ElemDupe / a duplicate-region
// NullRegion.
func BuildWithRegions(regions []RegionSpec) (*StateVector, error) {
	if len(regions) == 0 {
		return &StateVector{}, errs.New(errs.NullElementArray, "state vector: no regions configured")
	}
	sv := &StateVector{
		elements: make(map[string]elementEntry),
		regions:  make(map[string]regionEntry),
	}
	cursor := 0
	var backing []byte
	seenRegion := make(map[string]bool)
	for _, r := range regions {
		if r.Name == "" {
			return &StateVector{}, errs.New(errs.NullRegion, "state vector: region with empty name")
		}
		if seenRegion[r.Name] {
			return &StateVector{}, errs.New(errs.NullRegion, "state vector: duplicate region %q", r.Name)
		}
		seenRegion[r.Name] = true
		if len(r.Elements) == 0 {
			return &StateVector{}, errs.New(errs.CfgEmptyRegion, "region %q: no elements configured", r.Name)
		}
		regionStart := cursor
		for _, e := range r.Elements {
			if e.Name == "" {
				return &StateVector{}, errs.New(errs.NullElement, "region %q: element with empty name", r.Name)
			}
			if !e.Kind.Valid() {
				return &StateVector{}, errs.New(errs.NullElement, "region %q: element %q has invalid type", r.Name, e.Name)
			}
			if _, dup := sv.elements[e.Name]; dup {
				return &StateVector{}, errs.New(errs.ElemDupe, "element %q declared more than once", e.Name)
			}
			sv.elements[e.Name] = elementEntry{kind: e.Kind, off: cursor}
			sv.elemSeq = append(sv.elemSeq, e.Name)
			cursor += e.Kind.Size()
		}
		sv.regions[r.Name] = regionEntry{off: regionStart, size: cursor - regionStart}
	}
	backing = make([]byte, cursor)
	sv.backing = backing
	sv.built = true
	if err := validateLayout(sv, regions); err != nil {
		return &StateVector{}, err
	}
	logrus.WithFields(logrus.Fields{
		"elements": len(sv.elements),
		"regions":  len(sv.regions),
		"bytes":    cursor,
	}).Debug("surefire: state vector built")
	return sv, nil
}

// BuildFlat lays out elements with no region grouping. It is used
// for the assembler's secondary local-element state vector, which has
// no region sections in the grammar.
func BuildFlat(elements []ElementSpec) (*StateVector, error) {
	if len(elements) == 0 {
		return &StateVector{}, errs.New(errs.NullElementArray, "state vector: no elements configured")
	}
	sv := &StateVector{
		elements: make(map[string]elementEntry),
		regions:  make(map[string]regionEntry),
	}
	cursor := 0
	for _, e := range elements {
		if e.Name == "" {
			return &StateVector{}, errs.New(errs.NullElement, "state vector: element with empty name")
		}
		if !e.Kind.Valid() {
			return &StateVector{}, errs.New(errs.NullElement, "state vector: element %q has invalid type", e.Name)
		}
		if _, dup := sv.elements[e.Name]; dup {
			return &StateVector{}, errs.New(errs.ElemDupe, "element %q declared more than once", e.Name)
		}
		sv.elements[e.Name] = elementEntry{kind: e.Kind, off: cursor}
		sv.elemSeq = append(sv.elemSeq, e.Name)
		cursor += e.Kind.Size()
	}
	sv.backing = make([]byte, cursor)
	sv.built = true
	return sv, nil
}

// validateLayout re-derives the running cursor from the same element
// order used during construction and confirms each region's declared
// span is exactly covered. BuildWithRegions always produces
// a satisfying layout by construction; validateLayout exists so the
// invariant is an executable, testable check rather than an
// assumption, and so a future caller-supplied layout (e.g. explicit
// addresses) has somewhere to fail with LayoutMismatch.
func validateLayout(sv *StateVector, regions []RegionSpec) error {
	cursor := 0
	for _, r := range regions {
		start := cursor
		for _, e := range r.Elements {
			ent, ok := sv.elements[e.Name]
			if !ok || ent.off != cursor {
				return errs.New(errs.LayoutMismatch, "region %q: element %q is not contiguous at offset %d", r.Name, e.Name, cursor)
			}
			cursor += e.Kind.Size()
		}
		reg := sv.regions[r.Name]
		if reg.off != start || reg.off+reg.size != cursor {
			return errs.New(errs.LayoutMismatch, "region %q: span [%d,%d) does not match its elements", r.Name, reg.off, reg.off+reg.size)
		}
	}
	return nil
}

// ElementNames returns element names in declared order.
func (sv *StateVector) ElementNames() []string { return sv.elemSeq }

// dynElem looks up name and returns the dynamic handle plus any error.
func (sv *StateVector) dynElem(name string) (Elem, error) {
	if !sv.built {
		return Elem{}, errs.New(errs.Uninitialized, "state vector was not successfully built")
	}
	ent, ok := sv.elements[name]
	if !ok {
		return Elem{}, errs.New(errs.KeyNotFound, "element %q not found", name)
	}
	return Elem{backing: &sv.backing, kind: ent.kind, off: ent.off}, nil
}

// GetElemDynamic resolves name to a dynamically typed Elem, without
// regard to a caller-known Go type. This is the lookup path used by
// the config assembler, which only learns kinds at assembly time.
func (sv *StateVector) GetElemDynamic(name string) (Elem, error) { return sv.dynElem(name) }

// GetElement resolves name to a typed Element[T] handle. It fails
// with Uninitialized, KeyNotFound, or TypeMismatch.
func GetElement[T scalar.Native](sv *StateVector, name string) (Element[T], error) {
	e, err := sv.dynElem(name)
	if err != nil {
		return Element[T]{}, err
	}
	want := scalar.KindOf[T]()
	if e.kind != want {
		return Element[T]{}, errs.New(errs.TypeMismatch, "element %q is %s, not %s", name, e.kind, want)
	}
	return Element[T]{e: e}, nil
}

// GetRegion resolves name to a Region handle.
func (sv *StateVector) GetRegion(name string) (Region, error) {
	if !sv.built {
		return Region{}, errs.New(errs.Uninitialized, "state vector was not successfully built")
	}
	if len(sv.regions) == 0 {
		return Region{}, errs.New(errs.Empty, "state vector has no regions configured")
	}
	ent, ok := sv.regions[name]
	if !ok {
		return Region{}, errs.New(errs.KeyNotFound, "region %q not found", name)
	}
	return Region{backing: &sv.backing, name: name, off: ent.off, size: ent.size}, nil
}

// Built reports whether construction succeeded.
func (sv *StateVector) Built() bool { return sv.built }
