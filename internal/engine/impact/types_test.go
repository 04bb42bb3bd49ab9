package impact

import (
	"testing"

	"impactscan/internal/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChangeType(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input    string
		expected ChangeType
	}{
		{input: "add", expected: ChangeAdd},
		{input: "A", expected: ChangeAdd},
		{input: " modified ", expected: ChangeModify},
		{input: "M", expected: ChangeModify},
		{input: "delete", expected: ChangeDelete},
		{input: "D", expected: ChangeDelete},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseChangeType(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}

	_, err := ParseChangeType("renamed")
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestChangeSet_LookupAndValidate(t *testing.T) {
	cs := ChangeSet{
		{ChangedFile: "/p/a.ts", ChangeType: ChangeModify, ModifiedExports: []string{"x"}},
		{ChangedFile: "/p/a.ts", ChangeType: ChangeDelete},
	}

	change, ok := cs.Lookup("/p/a.ts")
	require.True(t, ok)
	assert.Equal(t, ChangeModify, change.ChangeType)
	assert.True(t, change.HasExportDiff())

	_, ok = cs.Lookup("/p/b.ts")
	assert.False(t, ok)
	assert.NoError(t, cs.Validate())

	assert.True(t, errors.IsCode(ChangeSet{{ChangedFile: "rel.ts", ChangeType: ChangeAdd}}.Validate(), errors.CodeValidationError))
	assert.True(t, errors.IsCode(ChangeSet{{ChangedFile: "/p/a.ts", ChangeType: "rename"}}.Validate(), errors.CodeValidationError))
}

func TestReasonHelpers(t *testing.T) {
	assert.Equal(t, "File was added", DefaultReason(ChangeAdd))
	assert.Equal(t, "File was modified", DefaultReason(ChangeModify))
	assert.Equal(t, "Asset file was deleted", AssetReason(ChangeDelete))
	assert.False(t, FileChange{ChangeType: ChangeAdd, ModifiedExports: []string{"a"}}.HasExportDiff())
}
