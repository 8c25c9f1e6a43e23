package fs

import (
	"path"
	"sort"
	"strings"
)

// MockFS is an in-memory tree keyed by slash-separated absolute paths,
// grounded on internal/fs/fs_mock.go's mockFS but without its Windows
// path-separator translation layer (HQL's tests only exercise POSIX-style
// workspace paths).
type MockFS struct {
	files map[string]string
	cwd   string
}

func NewMockFS(files map[string]string) *MockFS {
	clone := make(map[string]string, len(files))
	for k, v := range files {
		clone[k] = v
	}
	return &MockFS{files: clone, cwd: "/"}
}

func (m *MockFS) ReadFile(p string) (string, error) {
	if contents, ok := m.files[p]; ok {
		return contents, nil
	}
	return "", ErrNotFound
}

func (m *MockFS) ReadDirectory(dir string) ([]DirEntry, error) {
	seen := map[string]EntryKind{}
	prefix := strings.TrimSuffix(dir, "/") + "/"
	found := false
	for file := range m.files {
		if !strings.HasPrefix(file, prefix) {
			continue
		}
		found = true
		rest := strings.TrimPrefix(file, prefix)
		if slash := strings.IndexByte(rest, '/'); slash >= 0 {
			seen[rest[:slash]] = DirEntryKind
		} else {
			seen[rest] = FileEntryKind
		}
	}
	if !found {
		return nil, ErrNotFound
	}
	entries := make([]DirEntry, 0, len(seen))
	for name, kind := range seen {
		entries = append(entries, DirEntry{Name: name, Kind: kind})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (m *MockFS) Stat(p string) (int64, error) {
	if _, ok := m.files[p]; ok {
		return 0, nil
	}
	return 0, ErrNotFound
}

func (*MockFS) IsAbs(p string) bool { return strings.HasPrefix(p, "/") }

func (m *MockFS) Abs(p string) (string, bool) {
	if m.IsAbs(p) {
		return path.Clean(p), true
	}
	return path.Clean(path.Join(m.cwd, p)), true
}

func (*MockFS) Dir(p string) string  { return path.Dir(p) }
func (*MockFS) Base(p string) string { return path.Base(p) }
func (*MockFS) Ext(p string) string  { return path.Ext(p) }

func (*MockFS) Join(parts ...string) string { return path.Join(parts...) }

func (*MockFS) Rel(base, target string) (string, bool) {
	base = strings.TrimSuffix(base, "/") + "/"
	if strings.HasPrefix(target, base) {
		return strings.TrimPrefix(target, base), true
	}
	return target, false
}

func (m *MockFS) Cwd() string { return m.cwd }
