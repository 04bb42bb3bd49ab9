package impact

import (
	"path/filepath"
	"testing"

	"impactscan/internal/engine/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapResolver resolves "./name" style sources against the importing file's directory.
type mapResolver map[string]string

func (m mapResolver) Resolve(fromFile, specifier string) (string, bool) {
	if target, ok := m[specifier]; ok {
		return target, true
	}
	return "", false
}

func TestClassify_FineGrainedModify(t *testing.T) {
	x := filepath.FromSlash("/proj/src/x.ts")
	c := NewClassifier(mapResolver{"./x": x})
	changes := ChangeSet{{ChangedFile: x, ChangeType: ChangeModify, ModifiedExports: []string{"foo"}}}

	t.Run("UnaffectedSymbol", func(t *testing.T) {
		entries := c.Classify("/proj/src/y.ts", []parser.ImportInfo{{Source: "./x", Specifiers: []string{"bar"}}}, changes)
		assert.Empty(t, entries)
	})

	t.Run("AffectedSymbol", func(t *testing.T) {
		entries := c.Classify("/proj/src/z.ts", []parser.ImportInfo{{Source: "./x", Specifiers: []string{"bar", "foo"}}}, changes)
		require.Len(t, entries, 1)
		assert.Equal(t, []string{"foo"}, entries[0].Specifiers)
		assert.Equal(t, "Modified exports from 'x.ts': foo", FormatReason(entries))
	})

	t.Run("NamespaceImport", func(t *testing.T) {
		entries := c.Classify("/proj/src/n.ts", []parser.ImportInfo{{Source: "./x", Specifiers: []string{Wildcard}}}, changes)
		require.Len(t, entries, 1)
		assert.Equal(t, []string{"foo"}, entries[0].Specifiers)
	})

	t.Run("SideEffectImport", func(t *testing.T) {
		entries := c.Classify("/proj/src/s.ts", []parser.ImportInfo{{Source: "./x"}}, changes)
		assert.Empty(t, entries)
	})
}

func TestClassify_CoarseGrained(t *testing.T) {
	added := filepath.FromSlash("/proj/src/new.ts")
	deleted := filepath.FromSlash("/proj/src/old.ts")
	modified := filepath.FromSlash("/proj/src/util.ts")
	c := NewClassifier(mapResolver{"./new": added, "./old": deleted, "./util": modified})

	changes := ChangeSet{
		{ChangedFile: deleted, ChangeType: ChangeDelete},
		{ChangedFile: added, ChangeType: ChangeAdd},
		{ChangedFile: modified, ChangeType: ChangeModify},
	}
	imports := []parser.ImportInfo{
		{Source: "./util"},
		{Source: "./new", Specifiers: []string{"a"}},
		{Source: "./old", Specifiers: []string{"b", "c"}},
		{Source: "react", Specifiers: []string{"useState"}},
	}

	entries := c.Classify("/proj/src/app.ts", imports, changes)
	require.Len(t, entries, 3)
	assert.Equal(t, ChangeDelete, entries[0].Change.ChangeType)
	assert.Equal(t, []string{"b", "c"}, entries[0].Specifiers)
	assert.Equal(t, ChangeAdd, entries[1].Change.ChangeType)
	assert.Equal(t, ChangeModify, entries[2].Change.ChangeType)
	assert.Empty(t, entries[2].Specifiers)

	assert.Equal(t,
		"Imported file 'old.ts' was deleted\n"+
			"New file 'new.ts' was added that is imported\n"+
			"File 'util.ts' content was modified",
		FormatReason(entries),
	)
}

func TestClassify_CoarseModifyKeepsImportedNames(t *testing.T) {
	util := filepath.FromSlash("/proj/src/util.ts")
	c := NewClassifier(mapResolver{"./util": util})
	imports := []parser.ImportInfo{{Source: "./util", Specifiers: []string{"formatDate", "parse"}}}

	for name, change := range map[string]FileChange{
		"no export list":    {ChangedFile: util, ChangeType: ChangeModify},
		"empty export list": {ChangedFile: util, ChangeType: ChangeModify, ModifiedExports: []string{}},
	} {
		t.Run(name, func(t *testing.T) {
			entries := c.Classify("/proj/src/app.ts", imports, ChangeSet{change})
			require.Len(t, entries, 1)
			assert.Equal(t, []string{"formatDate", "parse"}, entries[0].Specifiers)
			assert.Equal(t, "Modified exports from 'util.ts': formatDate, parse", FormatReason(entries))
		})
	}
}

func TestClassify_NoDeduplication(t *testing.T) {
	x := filepath.FromSlash("/proj/x.js")
	c := NewClassifier(mapResolver{"./x": x, "./x.js": x})
	changes := ChangeSet{{ChangedFile: x, ChangeType: ChangeDelete}}
	imports := []parser.ImportInfo{
		{Source: "./x", Specifiers: []string{"a"}},
		{Source: "./x.js", Specifiers: []string{"b"}},
	}

	entries := c.Classify("/proj/main.js", imports, changes)
	require.Len(t, entries, 2)
	assert.Equal(t, "Imported file 'x.js' was deleted\nImported file 'x.js' was deleted", FormatReason(entries))
}

func TestClassify_EmptyInputs(t *testing.T) {
	c := NewClassifier(mapResolver{})
	assert.Nil(t, c.Classify("/a.ts", nil, ChangeSet{{ChangedFile: "/b.ts", ChangeType: ChangeAdd}}))
	assert.Nil(t, c.Classify("/a.ts", []parser.ImportInfo{{Source: "./b"}}, nil))
}
