package panel

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *Registry {
	return NewRegistry(Default())
}

func TestResolveAlias(t *testing.T) {
	r := testRegistry()

	assert.Equal(t, "anthropic/claude-opus-4.6", r.Resolve("claude"))
	assert.Equal(t, "openai/gpt-5.2", r.Resolve("gpt"))
}

func TestResolveFullIDPassesThrough(t *testing.T) {
	r := testRegistry()

	assert.Equal(t, "anthropic/claude-opus-4.6", r.Resolve("anthropic/claude-opus-4.6"))
	assert.Equal(t, "mistralai/mistral-large", r.Resolve("mistralai/mistral-large"))
}

func TestResolveVariantLaw(t *testing.T) {
	r := testRegistry()

	tokens := []string{"claude", "gpt", "Gemini", "anthropic/claude-opus-4.6", "unknown-model"}
	for _, token := range tokens {
		for _, v := range VariantNames() {
			t.Run(token+":"+v, func(t *testing.T) {
				assert.Equal(t, r.Resolve(token)+Variants[v], r.Resolve(token+":"+v))
			})
		}
	}
}

func TestResolveUnknownVariantIsIdentity(t *testing.T) {
	r := testRegistry()

	tokens := []string{
		"anthropic/claude-opus-4.6:custom",
		"claude:turbo",
		"claude:Online",
		"ollama:llama3:8b",
		"claude:",
	}
	for _, token := range tokens {
		assert.Equal(t, token, r.Resolve(token), token)
	}
}

func TestResolveCaseInsensitive(t *testing.T) {
	r := testRegistry()

	assert.Equal(t, r.Resolve("claude"), r.Resolve("Claude"))
	assert.Equal(t, r.Resolve("claude"), r.Resolve("CLAUDE"))
	assert.Equal(t, r.Resolve("claude:nitro"), r.Resolve("Claude:nitro"))
}

func TestVariantsHaveColonPrefix(t *testing.T) {
	for name, suffix := range Variants {
		assert.True(t, strings.HasPrefix(suffix, ":"), "variant %s missing colon prefix", name)
	}
	assert.Equal(t, []string{"extended", "floor", "free", "nitro", "online"}, VariantNames())
}

func TestEnabledAliases(t *testing.T) {
	off := false
	on := true
	r := NewRegistry(&Panel{Entries: []Entry{
		{Alias: "a", Model: "m/a", Enabled: &on},
		{Alias: "b", Model: "m/b", Enabled: &off},
		{Alias: "c", Model: "m/c"},
	}})

	assert.Equal(t, []string{"a", "c"}, r.EnabledAliases())
}

func TestDefaultModel(t *testing.T) {
	off := false

	tests := []struct {
		name    string
		entries []Entry
		want    string
	}{
		{
			name:    "conventional alias wins",
			entries: []Entry{{Alias: "gpt", Model: "m/gpt"}, {Alias: "claude", Model: "m/claude", Enabled: &off}},
			want:    "m/claude",
		},
		{
			name:    "first enabled",
			entries: []Entry{{Alias: "gpt", Model: "m/gpt", Enabled: &off}, {Alias: "qwen", Model: "m/qwen"}},
			want:    "m/qwen",
		},
		{
			name:    "first entry when all disabled",
			entries: []Entry{{Alias: "gpt", Model: "m/gpt", Enabled: &off}, {Alias: "qwen", Model: "m/qwen", Enabled: &off}},
			want:    "m/gpt",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewRegistry(&Panel{Entries: tt.entries}).DefaultModel()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NewRegistry(&Panel{}).DefaultModel()
	assert.ErrorIs(t, err, ErrEmptyPanel)
}

func TestDefaultPanel(t *testing.T) {
	p := Default()
	require.Len(t, p.Entries, 9)

	seen := map[string]bool{}
	for _, e := range p.Entries {
		assert.False(t, seen[e.Alias], "duplicate alias %s", e.Alias)
		seen[e.Alias] = true
		assert.True(t, e.IsEnabled())
	}
	assert.Equal(t, []string{"claude", "gpt", "gemini", "deepseek", "llama", "grok", "kimi", "glm", "qwen"},
		testRegistry().EnabledAliases())
}

func TestLookupAndModelFor(t *testing.T) {
	r := testRegistry()

	e, ok := r.Lookup("GROK")
	require.True(t, ok)
	assert.Equal(t, "xAI", e.Provider)

	assert.Equal(t, "x-ai/grok-4", r.ModelFor("grok"))
	assert.Equal(t, "vendor/other", r.ModelFor("vendor/other"))
}

func TestAliasesSorted(t *testing.T) {
	pairs := testRegistry().Aliases()
	require.Len(t, pairs, 9)
	assert.Equal(t, "claude", pairs[0].Alias)
	assert.Equal(t, "qwen", pairs[len(pairs)-1].Alias)
}

func TestRegistryConcurrentReads(t *testing.T) {
	r := testRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "x-ai/grok-4:online", r.Resolve("grok:online"))
		}()
	}
	wg.Wait()
}

func TestLoadBytesValidation(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
		reason string
	}{
		{"malformed json", `[{"alias": "a",`, FormatJSON, "not parseable"},
		{"not a list", `{"alias": "a", "model": "m"}`, FormatJSON, "not parseable"},
		{"empty list", `[]`, FormatJSON, "no entries"},
		{"missing alias", `[{"model": "m/a"}]`, FormatJSON, `"alias"`},
		{"missing model", `[{"alias": "a"}]`, FormatJSON, `"model"`},
		{"yaml missing model", "- alias: a\n", FormatYAML, `"model"`},
		{"yaml garbage", "- alias: [unterminated\n", FormatYAML, "not parseable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBytes([]byte(tt.data), tt.format)
			require.Error(t, err)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestLoadBytesEnabledDefault(t *testing.T) {
	p, err := LoadBytes([]byte(`[{"alias":"a","model":"m/a"},{"alias":"b","model":"m/b","enabled":false}]`), FormatJSON)
	require.NoError(t, err)

	assert.True(t, p.Entries[0].IsEnabled())
	assert.Nil(t, p.Entries[0].Enabled)
	assert.False(t, p.Entries[1].IsEnabled())
}

func TestRoundTrip(t *testing.T) {
	off := false
	original := Default()
	original.Entries = append(original.Entries,
		Entry{Alias: "mistral", Model: "mistralai/mistral-large", Enabled: &off},
		Entry{Alias: "bare", Model: "vendor/bare"},
	)

	for _, name := range []string{"panel.json", "panel.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, original.Save(path))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, original.Entries, loaded.Entries)
			assert.Equal(t, path, loaded.Source)

			again, err := loaded.Marshal(FormatFor(path))
			require.NoError(t, err)
			first, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, string(first), string(again))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "panel.json"))

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadSetsPathOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	_, err := Load(path)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, path, cfgErr.Path)
	assert.Contains(t, err.Error(), path)
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFor("a/panel.yaml"))
	assert.Equal(t, FormatYAML, FormatFor("panel.YML"))
	assert.Equal(t, FormatJSON, FormatFor("panel.json"))
	assert.Equal(t, FormatJSON, FormatFor("panel"))
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(deep, 0755))

	global := filepath.Join(t.TempDir(), "global.json")
	require.NoError(t, Default().Save(global))

	assert.Equal(t, global, Discover(deep, global))

	project := filepath.Join(root, "a", "panel.yaml")
	require.NoError(t, Default().Save(project))
	assert.Equal(t, project, Discover(deep, global))

	closer := filepath.Join(deep, "panel.json")
	require.NoError(t, Default().Save(closer))
	assert.Equal(t, closer, Discover(deep, global))
}

func TestResolvePanel(t *testing.T) {
	empty := t.TempDir()

	p, err := Resolve("", empty, filepath.Join(empty, "none.json"))
	require.NoError(t, err)
	assert.Equal(t, Default().Entries, p.Entries)
	assert.Empty(t, p.Source)

	bad := filepath.Join(empty, "panel.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"alias":"x"}]`), 0644))
	_, err = Resolve("", empty, "")
	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr), "invalid config must not fall back to defaults")

	_, err = Resolve(filepath.Join(empty, "explicit.json"), empty, "")
	assert.True(t, errors.As(err, &cfgErr))
}

func TestDiscoverStopsAtRepoRoot(t *testing.T) {
	outer := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outer, "panel.json"), []byte(`not a panel`), 0644))

	repo := filepath.Join(outer, "repo")
	deep := filepath.Join(repo, "src", "pkg")
	require.NoError(t, os.MkdirAll(deep, 0755))
	require.NoError(t, os.Mkdir(filepath.Join(repo, ".git"), 0755))

	assert.Empty(t, Discover(deep, ""), "files above the repository root are ignored")

	inRepo := filepath.Join(repo, "panel.yaml")
	require.NoError(t, Default().Save(inRepo))
	assert.Equal(t, inRepo, Discover(deep, ""))
}

func TestDiscoverStopsAtHome(t *testing.T) {
	outer := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outer, "panel.json"), []byte(`not a panel`), 0644))

	home := filepath.Join(outer, "home")
	work := filepath.Join(home, "work")
	require.NoError(t, os.MkdirAll(work, 0755))
	t.Setenv("HOME", home)

	assert.Empty(t, Discover(work, ""))

	p, err := Resolve("", work, "")
	require.NoError(t, err)
	assert.Equal(t, Default().Entries, p.Entries)
}
