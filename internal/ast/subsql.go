package ast

import (
	"github.com/leapstack-labs/dynsql/pkg/core"
)

// Arg is one explicit binding of a sub-template invocation. A bare
// identifier in the argument list is shorthand for name = name, which the
// parser expresses as a Variable node of the same name.
type Arg struct {
	Name  string
	Value Node
}

// SubSQL invokes a sibling section of the enclosing registry entry.
// Argument expressions evaluate in the caller's environment; the callee
// sees only the resulting bag plus its own defaults. Invocations may
// recurse through the resolver; cycles run until stack exhaustion.
type SubSQL struct {
	base
	Name string
	Args []Arg
}

func (n *SubSQL) Eval(env *Env) (core.Value, error) {
	if env.Resolve == nil {
		return core.Null, errNoResolver
	}
	args := make(core.Params, len(n.Args))
	for _, a := range n.Args {
		v, err := a.Value.Eval(env)
		if err != nil {
			return core.Null, err
		}
		args.Set(a.Name, v)
	}
	s, err := env.Resolve(n.Name, args)
	if err != nil {
		return core.Null, err
	}
	return core.Str(s), nil
}
