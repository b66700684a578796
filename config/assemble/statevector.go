// Package assemble implements Surefire's semantic assembler: it takes
// the untyped trees cfgparse produces and a caller-supplied backing
// state vector (for the state-machine flavor) and produces the typed,
// executable runtime objects (statevector.StateVector, sm.StateMachine),
// or a combined error describing every semantic problem found.
package assemble

import (
	"github.com/hashicorp/go-multierror"

	"j5.nz/surefire/config/ast"
	"j5.nz/surefire/errs"
	"j5.nz/surefire/scalar"
	"j5.nz/surefire/statevector"
)

// StateVector converts a parsed [Name] / [REGION/Name] declaration
// tree into a built statevector.StateVector. Each element's type
// keyword is resolved with scalar.Lookup; an unrecognized keyword is
// reported as a TypeMismatch pinned to the declaration's position.
func StateVector(file string, cfg *ast.StateVectorConfig) (*statevector.StateVector, error) {
	var errors *multierror.Error
	specs := make([]statevector.RegionSpec, 0, len(cfg.Regions))
	for _, region := range cfg.Regions {
		spec := statevector.RegionSpec{Name: region.Name}
		for _, decl := range region.Elements {
			kind, ok := scalar.Lookup(decl.Type)
			if !ok {
				errors = multierror.Append(errors, errs.At(errs.TypeMismatch, file, decl.Line, decl.Col,
					"element %q: unknown type %q", decl.Name, decl.Type))
				continue
			}
			spec.Elements = append(spec.Elements, statevector.ElementSpec{Name: decl.Name, Kind: kind})
		}
		specs = append(specs, spec)
	}
	if err := errors.ErrorOrNil(); err != nil {
		return nil, err
	}
	sv, err := statevector.BuildWithRegions(specs)
	if err != nil {
		return nil, err
	}
	return sv, nil
}
