package ast

import (
	"github.com/leapstack-labs/dynsql/pkg/core"
)

// Variable resolves a name in the parameter bag. A missing name degrades
// to Null with a warning. A Json parameter that is itself a bare JSON
// integer or string is unwrapped to the primitive variant.
type Variable struct {
	base
	Name string
}

func (n *Variable) Eval(env *Env) (core.Value, error) {
	v := env.Params.Get(n.Name)
	if v.IsNull() {
		env.warn("missing parameter", "name", n.Name)
		return core.Null, nil
	}
	return v.Unwrap(), nil
}

// Member accesses a key of a JSON object. Any failed step yields Null;
// later suffixes on a Null receiver stay Null without further warnings.
type Member struct {
	base
	Object Node
	Key    string
}

func (n *Member) Eval(env *Env) (core.Value, error) {
	recv, err := n.Object.Eval(env)
	if err != nil {
		return core.Null, err
	}
	if recv.IsNull() {
		return core.Null, nil
	}
	obj, ok := recv.Object()
	if !ok {
		env.warn("member access on non-object", "key", n.Key, "kind", recv.Kind().String())
		return core.Null, nil
	}
	v, ok := obj[n.Key]
	if !ok {
		env.warn("missing member", "key", n.Key)
		return core.Null, nil
	}
	return core.FromJSON(v), nil
}

// Index accesses an element of a JSON array by integer position or a
// member of a JSON object by string key.
type Index struct {
	base
	Seq   Node
	Index Node
}

func (n *Index) Eval(env *Env) (core.Value, error) {
	recv, err := n.Seq.Eval(env)
	if err != nil {
		return core.Null, err
	}
	idx, err := n.Index.Eval(env)
	if err != nil {
		return core.Null, err
	}
	if recv.IsNull() {
		return core.Null, nil
	}

	switch idx.Kind() {
	case core.KindInt:
		arr, ok := recv.Array()
		if !ok {
			env.warn("integer index on non-array", "index", idx.Int64(), "kind", recv.Kind().String())
			return core.Null, nil
		}
		i := idx.Int64()
		if i < 0 || i >= int64(len(arr)) {
			env.warn("index out of bounds", "index", i, "len", len(arr))
			return core.Null, nil
		}
		return core.FromJSON(arr[i]), nil
	case core.KindString:
		obj, ok := recv.Object()
		if !ok {
			env.warn("string index on non-object", "key", idx.Text(), "kind", recv.Kind().String())
			return core.Null, nil
		}
		v, ok := obj[idx.Text()]
		if !ok {
			env.warn("missing member", "key", idx.Text())
			return core.Null, nil
		}
		return core.FromJSON(v), nil
	default:
		env.warn("unsupported index type", "kind", idx.Kind().String())
		return core.Null, nil
	}
}
