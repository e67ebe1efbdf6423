package ast

import (
	"strings"

	"github.com/leapstack-labs/dynsql/pkg/core"
)

// Branch pairs a condition with the body chain it guards.
type Branch struct {
	Cond Node
	Body Node
}

// If renders the body of the first branch whose condition is truthy.
// Branches preserve source order: the @if branch first, then each @elif.
// With no truthy branch the @else body renders, or the node yields Null.
type If struct {
	base
	Branches []Branch
	Else     Node
	HasElse  bool
}

func (n *If) Eval(env *Env) (core.Value, error) {
	for _, br := range n.Branches {
		cond, err := br.Cond.Eval(env)
		if err != nil {
			return core.Null, err
		}
		if cond.Truthy() {
			s, err := Render(br.Body, env)
			if err != nil {
				return core.Null, err
			}
			return core.Str(s), nil
		}
	}
	if n.HasElse {
		s, err := Render(n.Else, env)
		if err != nil {
			return core.Null, err
		}
		return core.Str(s), nil
	}
	return core.Null, nil
}

// For iterates a JSON array or object, rendering the body once per element
// and joining renderings with the separator literal. The element binds to
// ValName in a shadowing copy of the bag (unwrapped when primitive); the
// optional IdxName binds the array index or object key. Object members
// iterate in sorted key order. A non-collection yields an empty string.
type For struct {
	base
	ValName string
	IdxName string
	Coll    Node
	Sep     Node
	Body    Node
}

func (n *For) Eval(env *Env) (core.Value, error) {
	coll, err := n.Coll.Eval(env)
	if err != nil {
		return core.Null, err
	}

	sep := ""
	if n.Sep != nil {
		v, err := n.Sep.Eval(env)
		if err != nil {
			return core.Null, err
		}
		sep = v.Text()
	}

	render := func(sb *strings.Builder, elem core.Value, idx core.Value, first bool) error {
		bag := env.Params.Clone()
		bag.Set(n.ValName, elem)
		if n.IdxName != "" {
			bag.Set(n.IdxName, idx)
		}
		s, err := Render(n.Body, env.child(bag))
		if err != nil {
			return err
		}
		if !first {
			sb.WriteString(sep)
		}
		sb.WriteString(s)
		return nil
	}

	var sb strings.Builder
	if arr, ok := coll.Array(); ok {
		for i, elem := range arr {
			if err := render(&sb, core.FromJSON(elem), core.Int(int64(i)), i == 0); err != nil {
				return core.Null, err
			}
		}
		return core.Str(sb.String()), nil
	}
	if obj, ok := coll.Object(); ok {
		for i, key := range core.MemberNames(obj) {
			if err := render(&sb, core.FromJSON(obj[key]), core.Str(key), i == 0); err != nil {
				return core.Null, err
			}
		}
		return core.Str(sb.String()), nil
	}

	if !coll.IsNull() {
		env.warn("for loop over non-collection", "kind", coll.Kind().String())
	}
	return core.Str(""), nil
}
