// Package resource resolves role models and animation clips by path. Commands
// reach it through the Accessor interface; the director never does.
package resource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/sce/internal/scene"
)

// ErrNotFound is returned when a model or clip does not exist.
var ErrNotFound = errors.New("resource: not found")

// Accessor is what commands need from resource management.
type Accessor interface {
	Model(role int) (string, error)
	Clip(role int, action string) (scene.Clip, error)
}

// ClipRef names one clip to preload.
type ClipRef struct {
	Role   int
	Action string
}

// clipFile is the on-disk clip metadata (role/<id>/<action>.yaml).
type clipFile struct {
	Frames int     `yaml:"frames"`
	FPS    float64 `yaml:"fps"`
}

const defaultFPS = 30

// Manager serves resources from a filesystem and caches decoded clips.
type Manager struct {
	root fs.FS

	mu    sync.Mutex
	clips map[ClipRef]scene.Clip
}

// NewManager wraps root (for example os.DirFS(assets)).
func NewManager(root fs.FS) (*Manager, error) {
	if root == nil {
		return nil, fmt.Errorf("resource: root filesystem is required")
	}
	return &Manager{root: root, clips: map[ClipRef]scene.Clip{}}, nil
}

// RoleDir returns the directory holding a role's resources.
func RoleDir(role int) string {
	return path.Join("role", fmt.Sprint(role))
}

// Model implements Accessor. A role exists when its directory does.
func (m *Manager) Model(role int) (string, error) {
	dir := RoleDir(role)
	info, err := fs.Stat(m.root, dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("resource: role %d: %w", role, ErrNotFound)
	}
	return strings.ToUpper(dir), nil
}

// Clip implements Accessor.
func (m *Manager) Clip(role int, action string) (scene.Clip, error) {
	ref := ClipRef{Role: role, Action: action}
	m.mu.Lock()
	clip, ok := m.clips[ref]
	m.mu.Unlock()
	if ok {
		return clip, nil
	}
	clip, err := m.loadClip(ref)
	if err != nil {
		return scene.Clip{}, err
	}
	m.mu.Lock()
	m.clips[ref] = clip
	m.mu.Unlock()
	return clip, nil
}

func (m *Manager) loadClip(ref ClipRef) (scene.Clip, error) {
	if ref.Action == "" {
		return scene.Clip{}, fmt.Errorf("resource: clip action is required")
	}
	file := path.Join(RoleDir(ref.Role), ref.Action+".yaml")
	data, err := fs.ReadFile(m.root, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return scene.Clip{}, fmt.Errorf("resource: clip %s: %w", file, ErrNotFound)
		}
		return scene.Clip{}, fmt.Errorf("resource: read %s: %w", file, err)
	}
	var meta clipFile
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return scene.Clip{}, fmt.Errorf("resource: decode %s: %w", file, err)
	}
	if meta.Frames <= 0 {
		return scene.Clip{}, fmt.Errorf("resource: %s: frames must be positive", file)
	}
	if meta.FPS <= 0 {
		meta.FPS = defaultFPS
	}
	return scene.Clip{Name: ref.Action, Frames: meta.Frames, FPS: meta.FPS}, nil
}

// Preload warms the clip cache concurrently. It stops at the first failure.
func (m *Manager) Preload(ctx context.Context, refs []ClipRef) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(4)
	for _, ref := range refs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := m.Clip(ref.Role, ref.Action)
			return err
		})
	}
	return eg.Wait()
}

// Cached reports how many clips are cached.
func (m *Manager) Cached() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clips)
}
