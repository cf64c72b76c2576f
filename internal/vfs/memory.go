package vfs

import (
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"
)

// MemFS implements VFS using an in-memory file tree.
// It is primarily used for testing but also backs scratch workspaces.
//
// MemFS is safe for concurrent use.
type MemFS struct {
	mu    sync.RWMutex
	files map[string]*memFile
	dirs  map[string]bool

	// failWrites maps paths to the error WriteFile returns for them.
	failWrites map[string]error
}

type memFile struct {
	content []byte
	mode    fs.FileMode
	modTime time.Time
}

// NewMemFS creates a new in-memory file system.
func NewMemFS() *MemFS {
	return &MemFS{
		files:      make(map[string]*memFile),
		dirs:       map[string]bool{"/": true},
		failWrites: make(map[string]error),
	}
}

// Ensure MemFS implements VFS.
var _ VFS = (*MemFS)(nil)

// ReadFile reads the entire file content.
func (m *MemFS) ReadFile(filePath string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filePath = cleanPath(filePath)
	f, ok := m.files[filePath]
	if !ok {
		if m.dirs[filePath] {
			return nil, &fs.PathError{Op: "read", Path: filePath, Err: syscall.EISDIR}
		}
		return nil, &fs.PathError{Op: "read", Path: filePath, Err: fs.ErrNotExist}
	}

	content := make([]byte, len(f.content))
	copy(content, f.content)
	return content, nil
}

// ReadHead reads at most n bytes from the start of a file.
func (m *MemFS) ReadHead(filePath string, n int) ([]byte, error) {
	data, err := m.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	if len(data) > n {
		data = data[:n]
	}
	return data, nil
}

// WriteFile writes data to a file, creating parent directories implicitly.
func (m *MemFS) WriteFile(filePath string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath = cleanPath(filePath)
	if err, ok := m.failWrites[filePath]; ok {
		return &fs.PathError{Op: "write", Path: filePath, Err: err}
	}
	if m.dirs[filePath] {
		return &fs.PathError{Op: "write", Path: filePath, Err: syscall.EISDIR}
	}

	content := make([]byte, len(data))
	copy(content, data)
	m.files[filePath] = &memFile{
		content: content,
		mode:    perm,
		modTime: time.Now(),
	}
	m.addParents(filePath)
	return nil
}

// Stat returns file information.
func (m *MemFS) Stat(filePath string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filePath = cleanPath(filePath)
	if f, ok := m.files[filePath]; ok {
		return NewFileInfo(filePath, path.Base(filePath), int64(len(f.content)), f.mode, f.modTime), nil
	}
	if m.dirs[filePath] {
		return NewFileInfo(filePath, path.Base(filePath), 0, fs.ModeDir|0755, time.Time{}), nil
	}
	return FileInfo{}, &fs.PathError{Op: "stat", Path: filePath, Err: fs.ErrNotExist}
}

// Abs returns the cleaned, rooted form of the path.
func (m *MemFS) Abs(filePath string) (string, error) {
	return cleanPath(filePath), nil
}

// Exists returns true if the path exists.
func (m *MemFS) Exists(filePath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filePath = cleanPath(filePath)
	_, isFile := m.files[filePath]
	return isFile || m.dirs[filePath]
}

// IsDir returns true if the path is a directory.
func (m *MemFS) IsDir(filePath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirs[cleanPath(filePath)]
}

// IsRegular returns true if the path is a regular file.
func (m *MemFS) IsRegular(filePath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.files[cleanPath(filePath)]
	return ok && f.mode.IsRegular()
}

// AddFile is a convenience method for creating a file with string content.
func (m *MemFS) AddFile(filePath, content string) error {
	return m.WriteFile(filePath, []byte(content), 0644)
}

// AddDir creates a directory and its parents.
func (m *MemFS) AddDir(dirPath string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dirPath = cleanPath(dirPath)
	m.dirs[dirPath] = true
	m.addParents(dirPath)
}

// Remove deletes a file. Missing paths are ignored.
func (m *MemFS) Remove(filePath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, cleanPath(filePath))
}

// FailWrites makes every WriteFile to path return err until cleared with nil.
func (m *MemFS) FailWrites(filePath string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath = cleanPath(filePath)
	if err == nil {
		delete(m.failWrites, filePath)
		return
	}
	m.failWrites[filePath] = err
}

// Files returns all file paths, sorted.
func (m *MemFS) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]string, 0, len(m.files))
	for p := range m.files {
		files = append(files, p)
	}
	sort.Strings(files)
	return files
}

// addParents marks every ancestor of p as a directory. Caller holds the lock.
func (m *MemFS) addParents(p string) {
	for dir := path.Dir(p); ; dir = path.Dir(dir) {
		m.dirs[dir] = true
		if dir == "/" || dir == "." {
			return
		}
	}
}

func cleanPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
