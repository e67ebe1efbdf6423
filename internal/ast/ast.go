// Package ast defines the abstract syntax tree of the template language
// and its evaluator. Top-level templates and block bodies are linked
// chains of sibling nodes; each node evaluates to a core.Value against a
// per-render environment.
//
// Evaluation never fails on data-shape problems: a missing parameter, a
// bad member access, or an out-of-bounds index degrades to Null (empty
// output) with a warning on the environment's logger. The error return of
// Eval is reserved for structural failures surfacing from sub-template
// compilation.
package ast

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/dynsql/pkg/core"
)

// Env is the evaluation environment for a single render. It is never
// mutated by evaluation; loop bodies see a shadowing clone of Params.
type Env struct {
	Params core.Params

	// Logger receives evaluation degradation warnings. Nil means discard.
	Logger *slog.Logger

	// Resolve renders a sibling section of the enclosing registry entry.
	// Installed by the engine; sub-template invocations call through it
	// and may recurse.
	Resolve func(name string, args core.Params) (string, error)
}

func (e *Env) warn(msg string, args ...any) {
	if e.Logger != nil {
		e.Logger.Warn(msg, args...)
	}
}

// child returns an environment identical to e but with its own bag.
func (e *Env) child(params core.Params) *Env {
	return &Env{Params: params, Logger: e.Logger, Resolve: e.Resolve}
}

// Node is a single AST node. Nodes form linked sibling chains via Next;
// the chain is linear and acyclic, and a compiled tree is immutable after
// parsing.
type Node interface {
	Eval(env *Env) (core.Value, error)
	Next() Node
	SetNext(n Node)
}

// base supplies the sibling link shared by every node kind.
type base struct {
	next Node
}

func (b *base) Next() Node     { return b.next }
func (b *base) SetNext(n Node) { b.next = n }

// Render walks the sibling chain from head, appending the string
// projection of each node's value: strings verbatim, integers in decimal,
// Null and Json nothing.
func Render(head Node, env *Env) (string, error) {
	var sb strings.Builder
	for n := head; n != nil; n = n.Next() {
		v, err := n.Eval(env)
		if err != nil {
			return "", err
		}
		sb.WriteString(v.Text())
	}
	return sb.String(), nil
}

// Text yields a verbatim run of template text.
type Text struct {
	base
	Text string
}

func (n *Text) Eval(*Env) (core.Value, error) {
	return core.Str(n.Text), nil
}

// Number is an integer literal.
type Number struct {
	base
	Value int64
}

func (n *Number) Eval(*Env) (core.Value, error) {
	return core.Int(n.Value), nil
}

// StringLit is a quoted string literal.
type StringLit struct {
	base
	Value string
}

func (n *StringLit) Eval(*Env) (core.Value, error) {
	return core.Str(n.Value), nil
}

// NullLit is the null literal.
type NullLit struct {
	base
}

func (n *NullLit) Eval(*Env) (core.Value, error) {
	return core.Null, nil
}

// errNoResolver surfaces when a template invokes a sub-template but the
// render was driven without an engine (library misuse, not template data).
var errNoResolver = errors.New("no sub-template resolver installed")
