package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/jsonloc/config"
	"github.com/minios-linux/jsonloc/mapping"
	"github.com/minios-linux/jsonloc/schema"
)

const projectConfig = `source_locale: en-US
locales: [de-DE, fr-FR, en-US]
json:
  schemas: [schemas]
  mappings:
    "resources/**/*.json":
      schema: http://example.com/strings
      template: "[dir]/[localeDir]/strings.json"
    "**/*.json":
      method: sparse
      template: "[dir]/[locale]/[filename]"
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func setupProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, config.FileName), projectConfig)
	writeFile(t, filepath.Join(root, "schemas", "strings.json"),
		`{"$id": "http://example.com/strings", "type": "object", "$defs": {"entry": {"$anchor": "entry"}}}`)
	writeFile(t, filepath.Join(root, "resources", "strings.json"), `{"hello": "Hello"}`)
	writeFile(t, filepath.Join(root, "resources", "de", "DE", "strings.json"), `{"hello": "Hallo"}`)
	writeFile(t, filepath.Join(root, "webapp", "messages.jso"), `{"bye": "Bye"}`)
	writeFile(t, filepath.Join(root, "webapp", "fr-FR", "messages.json"), `{"bye": "Salut"}`)
	writeFile(t, filepath.Join(root, ".git", "hooks.json"), `{}`)
	writeFile(t, filepath.Join(root, "README.md"), "# readme\n")
	return root
}

func openProject(t *testing.T, root string) *Project {
	t.Helper()
	cfg, err := config.Load(root)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	p, err := Open(root, cfg, nil)
	require.NoError(t, err)
	return p
}

func TestOpenResolvesSchemas(t *testing.T) {
	p := openProject(t, setupProject(t))

	rules := p.Classifier().Rules()
	require.Len(t, rules, 2)

	s, ok := p.Schema(&rules[0])
	require.True(t, ok)
	assert.Equal(t, "http://example.com/strings", s.(*schema.Object).StringField(schema.IDKey))

	s, ok = p.Schema(&rules[1])
	require.True(t, ok)
	assert.Equal(t, schema.DefaultID, s.(*schema.Object).StringField(schema.IDKey))

	_, ok = p.Registry().Get("http://example.com/strings/$defs/entry/$anchor")
	assert.True(t, ok)

	_, ok = p.Schema(nil)
	assert.False(t, ok)
}

func TestOpenMissingSchema(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, config.FileName), `json:
  mappings:
    "**/*.json":
      schema: urn:missing
      template: "[dir]/[locale]/[filename]"
`)
	cfg, err := config.Load(root)
	require.NoError(t, err)

	_, err = Open(root, cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaNotFound))
	assert.Contains(t, err.Error(), `"**/*.json"`)
	assert.Contains(t, err.Error(), "urn:missing")
}

func TestOpenMalformedSchema(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, config.FileName), "json:\n  schemas: [schemas]\n")
	bad := filepath.Join(root, "schemas", "bad.json")
	writeFile(t, bad, "{not json")

	cfg, err := config.Load(root)
	require.NoError(t, err)

	_, err = Open(root, cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
}

func TestOpenDefaults(t *testing.T) {
	p, err := Open(t.TempDir(), nil, nil)
	require.NoError(t, err)

	rules := p.Classifier().Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, mapping.DefaultPattern, rules[0].Pattern)

	_, ok := p.Schema(&rules[0])
	assert.True(t, ok)
	assert.Empty(t, p.OutputPaths("resources/strings.json"))
}

func TestClassifyAndOutputs(t *testing.T) {
	root := setupProject(t)
	p := openProject(t, root)

	res := p.Classify("resources/de/DE/strings.json")
	assert.Equal(t, mapping.Localized, res.Kind)
	assert.Equal(t, "de-DE", res.Locale.String())

	res = p.Classify(filepath.Join(root, "webapp", "messages.jso"))
	assert.Equal(t, mapping.Source, res.Kind)
	assert.Equal(t, "**/*.json", res.Rule.Pattern)
	assert.Equal(t, mapping.MethodSparse, res.Rule.Method)

	outs := p.OutputPaths("resources/strings.json")
	assert.Equal(t, map[string]string{
		"de-DE": "resources/de/DE/strings.json",
		"fr-FR": "resources/fr/FR/strings.json",
	}, outs)

	out, ok := p.OutputPath(filepath.Join(root, "webapp", "messages.jso"), "de-DE")
	require.True(t, ok)
	assert.Equal(t, "webapp/de-DE/messages.jso", out)

	_, ok = p.OutputPath("webapp/fr-FR/messages.json", "de-DE")
	assert.False(t, ok, "localized outputs have no outputs of their own")
	assert.Nil(t, p.OutputPaths("README.md"))
}

func TestScan(t *testing.T) {
	p := openProject(t, setupProject(t))

	res, err := p.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"resources/strings.json",
		"schemas/strings.json",
		"webapp/messages.jso",
	}, res.Sources)
	assert.Equal(t, []string{"de-DE", "fr-FR"}, res.Locales)
	assert.Equal(t, []string{"resources/de/DE/strings.json"}, res.Localized["de-DE"])
	assert.Equal(t, []string{"webapp/fr-FR/messages.json"}, res.Localized["fr-FR"])
}

func TestScanCancelled(t *testing.T) {
	p := openProject(t, setupProject(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Scan(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRel(t *testing.T) {
	root := t.TempDir()
	p, err := Open(root, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "a/b.json", p.Rel(filepath.Join(root, "a", "b.json")))
	assert.Equal(t, "a/b.json", p.Rel("a/b.json"))
	assert.Equal(t, "..cache/x.json", p.Rel(filepath.Join(root, "..cache", "x.json")))
	outside := filepath.Join(filepath.Dir(root), "elsewhere.json")
	assert.Equal(t, filepath.ToSlash(outside), p.Rel(outside))
}
