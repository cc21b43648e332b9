package file

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/core/ports/driven"
)

// Ensure TemplateStore implements the interface.
var _ driven.TemplateSource = (*TemplateStore)(nil)

const (
	templateExt    = ".txt"
	templateReadme = "README.md"
)

// TemplateStore loads reply templates from user-editable files.
// Each set lives in <dir>/<set>.txt with one template per line; blank
// lines and lines starting with '#' are skipped.
//
// The directory is created lazily on the first LoadTemplates call and
// seeded with the defaults, so edits survive upgrades.
type TemplateStore struct {
	mu       sync.RWMutex
	dir      string
	defaults map[string][]string
	cache    map[string][]string
	initOnce sync.Once
	initErr  error
}

// NewTemplateStore creates a store rooted at dir.
// An empty dir selects ~/.naviyam/templates.
func NewTemplateStore(dir string, defaults map[string][]string) (*TemplateStore, error) {
	if dir == "" {
		base, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "templates")
	}
	return &TemplateStore{
		dir:      dir,
		defaults: defaults,
	}, nil
}

// LoadTemplates returns every set that has a non-empty file on disk.
// Results are cached until Reload.
func (s *TemplateStore) LoadTemplates() (map[string][]string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return nil, s.initErr
	}

	s.mu.RLock()
	if s.cache != nil {
		out := copySets(s.cache)
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()

	sets := make(map[string][]string)
	for name := range s.defaults {
		lines, err := readTemplateFile(s.path(name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load templates %q: %w", name, err)
		}
		if len(lines) > 0 {
			sets[name] = lines
		}
	}

	s.mu.Lock()
	if s.cache == nil {
		s.cache = sets
	}
	out := copySets(s.cache)
	s.mu.Unlock()
	return out, nil
}

// Reload drops the cache so the next load reads from disk.
func (s *TemplateStore) Reload() {
	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()
}

// Dir returns the template directory.
func (s *TemplateStore) Dir() string {
	return s.dir
}

func (s *TemplateStore) path(name string) string {
	return filepath.Join(s.dir, name+templateExt)
}

// initialise creates the directory and writes default files that are missing.
// Existing files are never overwritten.
func (s *TemplateStore) initialise() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.initErr = fmt.Errorf("create template directory: %w", err)
		return
	}

	names := make([]string, 0, len(s.defaults))
	for name := range s.defaults {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := writeIfMissing(s.path(name), strings.Join(s.defaults[name], "\n")+"\n"); err != nil {
			s.initErr = fmt.Errorf("write default templates %q: %w", name, err)
			return
		}
	}
	if err := writeIfMissing(filepath.Join(s.dir, templateReadme), readme(names)); err != nil {
		s.initErr = fmt.Errorf("write template readme: %w", err)
	}
}

func writeIfMissing(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(content), 0600)
}

func readTemplateFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

func copySets(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func readme(names []string) string {
	var b strings.Builder
	b.WriteString("# Reply templates\n\n")
	b.WriteString("Each file holds one template per line. Blank lines and lines starting with # are ignored.\n")
	b.WriteString("Delete a file to restore its defaults on the next start.\n\n")
	b.WriteString("Placeholders: {shop_name} {menu_name} {price} {food_type} {reason} {query} {budget} {location}\n\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- %s%s\n", name, templateExt)
	}
	return b.String()
}
