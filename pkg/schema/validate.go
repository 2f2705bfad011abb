package schema

import "fmt"

// Validate checks that every reference in s can be followed: local refs
// name a declaration in s, parameter refs name a type parameter of the
// declaration they appear in, and external refs are flagged as such.
func Validate(s *Schema) []error {
	var errs []error
	for _, d := range s.Declarations() {
		check := func(n Node) bool {
			r, ok := n.(*Ref)
			if !ok {
				return true
			}
			switch {
			case r.External:
			case r.Parameter:
				if _, ok := d.Param(r.Name); !ok {
					errs = append(errs, fmt.Errorf("%s: reference to unknown type parameter %q", d.Name, r.Name))
				}
			default:
				if _, ok := s.Get(r.Name); !ok {
					errs = append(errs, fmt.Errorf("%s: dangling reference to %q", d.Name, r.Name))
				}
			}
			return true
		}
		for _, p := range d.TypeParameters {
			Walk(p, check)
		}
		Walk(d.Body, check)
	}
	return errs
}
