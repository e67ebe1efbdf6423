package ast

import (
	"github.com/leapstack-labs/dynsql/pkg/core"
)

func boolValue(b bool) core.Value {
	if b {
		return core.Int(1)
	}
	return core.Int(0)
}

// Not negates the truthiness of its operand.
type Not struct {
	base
	X Node
}

func (n *Not) Eval(env *Env) (core.Value, error) {
	v, err := n.X.Eval(env)
	if err != nil {
		return core.Null, err
	}
	return boolValue(!v.Truthy()), nil
}

// And is the boolean conjunction. Both operands are evaluated; the
// language is pure, so there are no side effects to short-circuit away.
type And struct {
	base
	L, R Node
}

func (n *And) Eval(env *Env) (core.Value, error) {
	l, err := n.L.Eval(env)
	if err != nil {
		return core.Null, err
	}
	r, err := n.R.Eval(env)
	if err != nil {
		return core.Null, err
	}
	return boolValue(l.Truthy() && r.Truthy()), nil
}

// Or is the boolean disjunction.
type Or struct {
	base
	L, R Node
}

func (n *Or) Eval(env *Env) (core.Value, error) {
	l, err := n.L.Eval(env)
	if err != nil {
		return core.Null, err
	}
	r, err := n.R.Eval(env)
	if err != nil {
		return core.Null, err
	}
	return boolValue(l.Truthy() || r.Truthy()), nil
}

// Compare is the equality predicate '==' or its negation '!='.
type Compare struct {
	base
	Negate bool
	L, R   Node
}

func (n *Compare) Eval(env *Env) (core.Value, error) {
	l, err := n.L.Eval(env)
	if err != nil {
		return core.Null, err
	}
	r, err := n.R.Eval(env)
	if err != nil {
		return core.Null, err
	}
	return boolValue(l.Equal(r) != n.Negate), nil
}
