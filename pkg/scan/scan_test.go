package scan_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/restring/pkg/scan"
)

func TestListDirs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	for _, d := range []string{"wt_vs_ko", "ctrl_vs_treated", "__pycache__", ".git"} {
		require.NoError(t, os.Mkdir(filepath.Join(root, d), 0o750))
	}

	require.NoError(t, os.WriteFile(filepath.Join(root, "readme.txt"), []byte("x"), 0o600))

	dirs, err := scan.ListDirs(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"ctrl_vs_treated", "wt_vs_ko"}, dirs)
}

func TestListDirs_MissingRoot(t *testing.T) {
	t.Parallel()

	_, err := scan.ListDirs(filepath.Join(t.TempDir(), "nope"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestPredicates(t *testing.T) {
	t.Parallel()

	names := []string{"d1_liver", "d2_liver", "d1_brain", "old_d3"}

	tests := []struct {
		name string
		fn   func(names, patterns []string) []string
		pats []string
		want []string
	}{
		{name: "keep_start", fn: scan.KeepStart, pats: []string{"d1"}, want: []string{"d1_liver", "d1_brain"}},
		{name: "keep_end", fn: scan.KeepEnd, pats: []string{"liver"}, want: []string{"d1_liver", "d2_liver"}},
		{name: "keep_inside", fn: scan.KeepInside, pats: []string{"d3", "brain"}, want: []string{"d1_brain", "old_d3"}},
		{name: "prune_start", fn: scan.PruneStart, pats: []string{"old"}, want: []string{"d1_liver", "d2_liver", "d1_brain"}},
		{name: "prune_end", fn: scan.PruneEnd, pats: []string{"liver"}, want: []string{"d1_brain", "old_d3"}},
		{name: "prune_inside", fn: scan.PruneInside, pats: []string{"_"}, want: []string{}},
		{name: "no_patterns_keep", fn: scan.KeepStart, pats: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.fn(names, tt.pats))
		})
	}
}

func TestClean(t *testing.T) {
	t.Parallel()

	names := []string{"res_liver", "res_brain", "tmp_liver"}

	assert.Equal(t, []string{"res_liver", "res_brain"}, scan.Clean(names, []string{"res"}, nil))
	assert.Equal(t, []string{"res_brain"}, scan.Clean(names, []string{"res"}, []string{"brain"}))
}

func TestFilter_Scan(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	for _, d := range []string{"res_liver", "res_brain", "res_liver_old", "tmp"} {
		require.NoError(t, os.Mkdir(filepath.Join(root, d), 0o750))
	}

	f := scan.Filter{StartsWith: []string{"res"}, Exclude: []string{"old"}}

	dirs, err := f.Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"res_brain", "res_liver"}, dirs)

	assert.Equal(t, []string{"a", "b"}, scan.Filter{}.Apply([]string{"a", "b"}))
}
