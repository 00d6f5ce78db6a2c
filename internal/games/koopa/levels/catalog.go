package levels

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// ErrNotFound is returned when a source has no level for a world/level.
var ErrNotFound = errors.New("level not found")

// Source produces level data for a world/level pair.
type Source interface {
	Level(world, level int, seed int64) (*Data, error)
}

// Catalog resolves levels from a user directory first, then the embedded
// builtin set, and finally the seeded generator.
type Catalog struct {
	Dir      string
	Generate bool
}

// NewCatalog creates a catalog over dir. An empty dir skips the user layer.
func NewCatalog(dir string) *Catalog {
	return &Catalog{Dir: dir, Generate: true}
}

// Level implements Source.
func (c *Catalog) Level(world, level int, seed int64) (*Data, error) {
	authored, err := c.LoadAll()
	if err != nil {
		return nil, err
	}
	for _, d := range authored {
		if d.World == world && d.Level == level {
			return d, nil
		}
	}
	if !c.Generate {
		return nil, fmt.Errorf("%w: %d-%d", ErrNotFound, world, level)
	}
	return Generate(world, level, seed), nil
}

// LoadAll returns every authored level sorted by world and level. User
// files override builtin levels with the same id; invalid files are
// skipped.
func (c *Catalog) LoadAll() ([]*Data, error) {
	byID := make(map[string]*Data)

	builtin, err := loadFS(builtinFS, "builtin")
	if err != nil {
		return nil, err
	}
	for _, d := range builtin {
		byID[d.ID] = d
	}

	if c.Dir != "" {
		if _, statErr := os.Stat(c.Dir); statErr == nil {
			user, err := c.loadDir()
			if err != nil {
				return nil, err
			}
			for _, d := range user {
				byID[d.ID] = d
			}
		}
	}

	out := make([]*Data, 0, len(byID))
	for _, d := range byID {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].World != out[j].World {
			return out[i].World < out[j].World
		}
		if out[i].Level != out[j].Level {
			return out[i].Level < out[j].Level
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (c *Catalog) loadDir() ([]*Data, error) {
	var out []*Data
	err := filepath.WalkDir(c.Dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSupportedExtension(filepath.Ext(path)) {
			return nil
		}
		lvl, err := LoadFile(path)
		if err != nil {
			// Skip invalid files
			return nil
		}
		out = append(out, lvl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", c.Dir, err)
	}
	return out, nil
}

func loadFS(fsys fs.FS, root string) ([]*Data, error) {
	matches, err := fs.Glob(fsys, root+"/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", root, err)
	}
	out := make([]*Data, 0, len(matches))
	for _, path := range matches {
		raw, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		d, err := ParseYAML(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		d.FilePath = path
		out = append(out, d)
	}
	return out, nil
}

// LoadFile loads a single level file, YAML or Tiled TMX by extension.
func LoadFile(path string) (*Data, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".tmx" {
		d, err := ImportTMX(path, TMXOptions{})
		if err != nil {
			return nil, err
		}
		d.FilePath = path
		return d, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	d, err := ParseYAML(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing file %s: %w", path, err)
	}
	d.FilePath = path
	return d, nil
}

// FileSource serves one level file for every world/level request.
// The file is re-read on each call so edits are picked up on reload.
type FileSource struct {
	Path string
}

// Level implements Source.
func (f FileSource) Level(int, int, int64) (*Data, error) {
	return LoadFile(f.Path)
}

func isSupportedExtension(ext string) bool {
	ext = strings.ToLower(ext)
	if ext == ".tmx" {
		return true
	}
	for _, supported := range FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}
