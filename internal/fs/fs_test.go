package fs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hlvm-dev/hqlc/internal/fs"
)

func TestMockFSReadFile(t *testing.T) {
	mock := fs.NewMockFS(map[string]string{
		"/project/main.hql": "(println 1)",
	})

	contents, err := mock.ReadFile("/project/main.hql")
	assert.NoError(t, err)
	assert.Equal(t, "(println 1)", contents)

	_, err = mock.ReadFile("/project/missing.hql")
	assert.ErrorIs(t, err, fs.ErrNotFound)
}

func TestMockFSReadDirectory(t *testing.T) {
	mock := fs.NewMockFS(map[string]string{
		"/project/main.hql":       "",
		"/project/lib/helper.hql": "",
	})

	entries, err := mock.ReadDirectory("/project")
	assert.NoError(t, err)
	assert.Len(t, entries, 2)

	names := map[string]fs.EntryKind{}
	for _, e := range entries {
		names[e.Name] = e.Kind
	}
	assert.Equal(t, fs.FileEntryKind, names["main.hql"])
	assert.Equal(t, fs.DirEntryKind, names["lib"])
}

func TestMockFSRel(t *testing.T) {
	mock := fs.NewMockFS(nil)
	rel, ok := mock.Rel("/project", "/project/lib/helper.hql")
	assert.True(t, ok)
	assert.Equal(t, "lib/helper.hql", rel)
}
