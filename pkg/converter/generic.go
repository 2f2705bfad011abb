package converter

import (
	"errors"

	"github.com/gnana997/tscanon/pkg/checker"
	"github.com/gnana997/tscanon/pkg/schema"
)

// typeParameters resolves the parameter list of d in declaration mode.
// Constraints and defaults may mention any parameter symbolically.
func (r *run) typeParameters(d *checker.Declaration) ([]*schema.GenericParam, error) {
	if params, ok := r.params[d]; ok {
		return params, nil
	}
	if err, ok := r.paramErrs[d]; ok {
		return nil, err
	}

	b := r.declarationBindings(d)
	params := make([]*schema.GenericParam, 0, len(d.TypeParameters))
	for _, tp := range d.TypeParameters {
		gp := &schema.GenericParam{Name: tp.Name}
		if tp.Constraint != nil {
			n, err := r.resolve(tp.Constraint, b)
			if err != nil {
				r.paramErrs[d] = err
				return nil, err
			}
			gp.Constraint = n
		}
		if tp.Default != nil {
			n, err := r.resolve(tp.Default, b)
			if err != nil {
				r.paramErrs[d] = err
				return nil, err
			}
			gp.Default = n
		}
		params = append(params, gp)
	}
	r.params[d] = params
	return params, nil
}

// bindArguments matches args to the parameters of d positionally. A missing
// argument falls back to the parameter's default, then its constraint, then
// any. Defaults may refer to earlier parameters.
func (r *run) bindArguments(d *checker.Declaration, args []schema.Node, at *checker.Type) (schema.Bindings, error) {
	params, err := r.typeParameters(d)
	if err != nil {
		return nil, err
	}
	if len(args) > len(params) {
		return nil, unsupported(at, "%s takes %d type argument(s), got %d", d.Name, len(params), len(args))
	}
	if len(params) == 0 {
		return nil, nil
	}

	b := make(schema.Bindings, len(params))
	for i, p := range params {
		switch {
		case i < len(args):
			b[p.Name] = args[i]
		case p.Default != nil:
			b[p.Name] = schema.Substitute(p.Default, b)
		case p.Constraint != nil:
			b[p.Name] = schema.Substitute(p.Constraint, b)
		default:
			b[p.Name] = schema.NewPrimitive(schema.Any)
		}
	}
	return b, nil
}

// instantiate resolves d with args. The declaration-mode body is reused
// through structural substitution; when that body could not be built because
// it needs the structure of a parameter (Pick<T, K>, T["k"]), d is resolved
// again with the concrete bindings.
func (r *run) instantiate(d *checker.Declaration, args []schema.Node, at *checker.Type) (schema.Node, error) {
	b, err := r.bindArguments(d, args, at)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return r.resolveDeclaration(d, nil)
	}

	generic, err := r.resolveDeclaration(d, r.declarationBindings(d))
	if err == nil {
		return schema.Substitute(generic, b), nil
	}
	var pe *parameterError
	if !errors.As(err, &pe) {
		return nil, err
	}
	return r.resolveDeclaration(d, b)
}

// resolveArguments resolves the written type arguments of a reference.
func (r *run) resolveArguments(t *checker.Type, b schema.Bindings) ([]schema.Node, error) {
	if len(t.Arguments) == 0 {
		return nil, nil
	}
	args := make([]schema.Node, 0, len(t.Arguments))
	for _, a := range t.Arguments {
		n, err := r.resolve(a, b)
		if err != nil {
			return nil, err
		}
		args = append(args, n)
	}
	return args, nil
}

// parameterOf reports whether n is a symbolic type parameter.
func parameterOf(n schema.Node) (string, bool) {
	if ref, ok := n.(*schema.Ref); ok && ref.Parameter {
		return ref.Name, true
	}
	return "", false
}
