package sqlgen

import (
	"testing"

	"github.com/leapstack-labs/dynsql/internal/testutil"
	"github.com/leapstack-labs/dynsql/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, registryJSON string) *Engine {
	t.Helper()
	registry, err := ParseRegistry([]byte(registryJSON))
	require.NoError(t, err)
	return New(Config{Registry: registry, Logger: testutil.NewTestLogger(t)})
}

func TestParseConfig(t *testing.T) {
	registry, err := ParseConfig([]byte(`{"sqls": {"a": "SELECT 1"}}`))
	require.NoError(t, err)
	assert.Equal(t, 1, registry.Count())
	assert.Equal(t, []string{"a"}, registry.Names())
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing sqls member", `{"other": {}}`},
		{"sqls not an object", `{"sqls": "nope"}`},
		{"not json", `{{`},
		{"entry bad shape", `{"sqls": {"a": 42}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestRegistry_EntryForms(t *testing.T) {
	registry, err := ParseRegistry([]byte(`{
		"simple": "SELECT 1",
		"structured": {
			"main": "SELECT 2",
			"aux": {"sql": "SELECT 3", "params": {"x": "y"}}
		}
	}`))
	require.NoError(t, err)

	simple, ok := registry.Lookup("simple")
	require.True(t, ok)
	assert.True(t, simple.IsSimple)
	sec, ok := simple.Section(SectionMain)
	require.True(t, ok)
	assert.Equal(t, "SELECT 1", sec.SQL)
	_, ok = simple.Section("aux")
	assert.False(t, ok, "a simple entry has only the main section")

	structured, ok := registry.Lookup("structured")
	require.True(t, ok)
	assert.False(t, structured.IsSimple)
	assert.Equal(t, []string{"aux", "main"}, structured.SectionNames())

	aux, ok := structured.Section("aux")
	require.True(t, ok)
	assert.Equal(t, "SELECT 3", aux.SQL)
	assert.Contains(t, aux.Params, "x")
}

func TestEngine_RenderSimple(t *testing.T) {
	eng := newTestEngine(t, `{
		"count_users": "SELECT COUNT(*) FROM users",
		"user_by_id": "SELECT * FROM users WHERE id = ${user_id}"
	}`)

	out, err := eng.Render("count_users", nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM users", out)

	out, err = eng.Render("user_by_id", core.Params{"user_id": core.Int(1)})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE id = 1", out)
}

func TestEngine_UnknownNameAndSection(t *testing.T) {
	eng := newTestEngine(t, `{"a": "SELECT 1", "b": {"main": "SELECT 2"}}`)

	_, err := eng.Render("nope", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	var terr *TemplateError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "nope", terr.Name)

	_, err = eng.RenderSection("b", "missing", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "missing", terr.Section)
}

func TestEngine_DefaultParams(t *testing.T) {
	eng := newTestEngine(t, `{
		"greet": {
			"main": {
				"sql": "hello ${x}, limit ${limit}",
				"params": {"x": "foo", "limit": 10}
			}
		}
	}`)

	// Defaults apply when the caller omits a key.
	out, err := eng.Render("greet", core.Params{})
	require.NoError(t, err)
	assert.Equal(t, "hello foo, limit 10", out)

	// render(name, {}) matches render(name, defaults).
	explicit, err := eng.Render("greet", core.Params{"x": core.Str("foo"), "limit": core.Int(10)})
	require.NoError(t, err)
	assert.Equal(t, out, explicit)

	// Caller-provided keys win.
	out, err = eng.Render("greet", core.Params{"x": core.Str("bar")})
	require.NoError(t, err)
	assert.Equal(t, "hello bar, limit 10", out)
}

func TestEngine_DefaultParamsJSON(t *testing.T) {
	eng := newTestEngine(t, `{
		"list": {
			"main": {
				"sql": "[@for(x in xs, separator=\", \")${x}@endfor]",
				"params": {"xs": [1, 2, 3]}
			}
		}
	}`)

	out, err := eng.Render("list", nil)
	require.NoError(t, err)
	assert.Equal(t, "[1, 2, 3]", out)
}

func TestEngine_SubTemplate(t *testing.T) {
	eng := newTestEngine(t, `{
		"s": {
			"main": "@sub_a(p=${outer})",
			"sub_a": "<${p}>"
		}
	}`)

	out, err := eng.Render("s", core.Params{"outer": core.Str("hi")})
	require.NoError(t, err)
	assert.Equal(t, "<hi>", out)
}

func TestEngine_SubTemplateScoping(t *testing.T) {
	eng := newTestEngine(t, `{
		"q": {
			"main": "A@aux()B@aux(x)C",
			"aux": "${x}"
		}
	}`)

	// The callee sees only its explicit arguments, never the caller's
	// whole bag.
	out, err := eng.Render("q", core.Params{"x": core.Int(5)})
	require.NoError(t, err)
	assert.Equal(t, "AB5C", out)
}

func TestEngine_SubTemplateDefaults(t *testing.T) {
	eng := newTestEngine(t, `{
		"q": {
			"main": "@aux()|@aux(tag='y')",
			"aux": {"sql": "<${tag}>", "params": {"tag": "x"}}
		}
	}`)

	out, err := eng.Render("q", nil)
	require.NoError(t, err)
	assert.Equal(t, "<x>|<y>", out)
}

func TestEngine_SubTemplateChain(t *testing.T) {
	eng := newTestEngine(t, `{
		"q": {
			"main": "1@mid()",
			"mid": "2@leaf()",
			"leaf": "3"
		}
	}`)

	out, err := eng.Render("q", nil)
	require.NoError(t, err)
	assert.Equal(t, "123", out)
}

func TestEngine_SubTemplateConditional(t *testing.T) {
	eng := newTestEngine(t, `{
		"user_list": {
			"main": "SELECT * FROM users@if(name) WHERE @name_filter(name)@endif",
			"name_filter": "name = '${name}'"
		}
	}`)

	out, err := eng.Render("user_list", core.Params{"name": core.Str("bob")})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE name = 'bob'", out)

	out, err = eng.Render("user_list", nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users", out)
}

func TestEngine_CompileErrorSurfaces(t *testing.T) {
	eng := newTestEngine(t, `{"bad": "${"}`)

	_, err := eng.Render("bad", nil)
	require.Error(t, err)
	var terr *TemplateError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "bad", terr.Name)
	assert.Equal(t, SectionMain, terr.Section)

	// A sub-template's compile failure surfaces when it is first
	// requested by the caller.
	eng = newTestEngine(t, `{"q": {"main": "@aux()", "aux": "${"}}`)
	_, err = eng.Render("q", nil)
	require.Error(t, err)
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "aux", terr.Section)
}

// TestEngine_CacheTransparency verifies that repeated renders with varying
// params behave exactly like renders on a fresh engine.
func TestEngine_CacheTransparency(t *testing.T) {
	const registry = `{
		"q": {
			"main": "id = ${id}@if(extra), ${extra}@endif",
			"aux": "unused"
		}
	}`

	bags := []core.Params{
		{"id": core.Int(1)},
		{"id": core.Int(2), "extra": core.Str("x")},
		{},
		{"id": core.Int(1)},
	}

	cached := newTestEngine(t, registry)
	for _, bag := range bags {
		want, err := newTestEngine(t, registry).Render("q", bag)
		require.NoError(t, err)
		got, err := cached.Render("q", bag)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestEngine_DoesNotMutateCallerBag(t *testing.T) {
	eng := newTestEngine(t, `{
		"q": {"main": {"sql": "${x}${y}", "params": {"y": "def"}}}
	}`)

	bag := core.Params{"x": core.Str("a")}
	out, err := eng.Render("q", bag)
	require.NoError(t, err)
	assert.Equal(t, "adef", out)
	assert.False(t, bag.Has("y"), "default merge must not leak into the caller's bag")
}

func TestFromConfig(t *testing.T) {
	eng, err := FromConfig([]byte(`{"sqls": {"a": "SELECT ${n}"}}`), testutil.NewTestLogger(t))
	require.NoError(t, err)

	out, err := eng.Render("a", core.Params{"n": core.Int(9)})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 9", out)

	_, err = FromConfig([]byte(`{}`), nil)
	assert.Error(t, err)
}

func TestEngine_LoadRegistry(t *testing.T) {
	eng := newTestEngine(t, `{"q": "old ${x}", "gone": "SELECT 1"}`)

	// Compile and cache the old template first.
	out, err := eng.Render("q", core.Params{"x": core.Int(1)})
	require.NoError(t, err)
	assert.Equal(t, "old 1", out)

	require.NoError(t, eng.LoadRegistry([]byte(`{"sqls": {"q": "new ${x}", "added": "SELECT 2"}}`)))

	// The cached AST for the unchanged (name, section) key must not keep
	// serving the old SQL text.
	out, err = eng.Render("q", core.Params{"x": core.Int(1)})
	require.NoError(t, err)
	assert.Equal(t, "new 1", out)

	out, err = eng.Render("added", nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 2", out)

	_, err = eng.Render("gone", nil)
	assert.ErrorIs(t, err, ErrNotFound, "entries absent from the new document are gone")
}

func TestEngine_LoadRegistry_ErrorKeepsOldRegistry(t *testing.T) {
	eng := newTestEngine(t, `{"q": "SELECT ${x}"}`)

	assert.Error(t, eng.LoadRegistry([]byte(`{"no_sqls_member": {}}`)))
	assert.Error(t, eng.LoadRegistry([]byte(`{{`)))

	out, err := eng.Render("q", core.Params{"x": core.Int(3)})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 3", out, "a failed reload must leave the engine serving its current registry")
}

func TestEngine_NilRegistry(t *testing.T) {
	eng := New(Config{})
	_, err := eng.Render("anything", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
