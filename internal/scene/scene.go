// Package scene holds the live scene graph that scripted commands mutate:
// role entities with their animations plus a single camera. The director
// never looks inside it; only commands and the host do.
package scene

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Scene is the handle commands receive every frame.
type Scene interface {
	Camera() *Camera
	Entity(name string) (*Entity, bool)
	AddEntity(entity *Entity) error
	RemoveEntity(name string) bool
	Entities() []*Entity
}

// Camera is the scene viewpoint. Angles are radians.
type Camera struct {
	Position Vec3
	Yaw      float64
	Pitch    float64
}

// Entity is one named object in the scene.
type Entity struct {
	ID        uuid.UUID
	Name      string
	Model     string
	Position  Vec3
	Visible   bool
	Animation *Animation
}

// NewEntity assigns a fresh ID to a visible entity.
func NewEntity(name, model string) *Entity {
	return &Entity{
		ID:      uuid.New(),
		Name:    name,
		Model:   model,
		Visible: true,
	}
}

// Play replaces the running animation.
func (e *Entity) Play(clip Clip, repeat int) *Animation {
	e.Animation = &Animation{Clip: clip, Repeat: repeat}
	return e.Animation
}

// Graph is the in-memory Scene implementation.
type Graph struct {
	name     string
	camera   Camera
	entities map[string]*Entity
}

// NewGraph returns an empty scene.
func NewGraph(name string) *Graph {
	return &Graph{name: name, entities: map[string]*Entity{}}
}

// Name returns the scene name.
func (g *Graph) Name() string {
	return g.name
}

// Camera implements Scene.
func (g *Graph) Camera() *Camera {
	return &g.camera
}

// Entity implements Scene.
func (g *Graph) Entity(name string) (*Entity, bool) {
	entity, ok := g.entities[name]
	return entity, ok
}

// AddEntity implements Scene. Names are unique within a scene.
func (g *Graph) AddEntity(entity *Entity) error {
	if entity == nil || entity.Name == "" {
		return fmt.Errorf("scene: entity name is required")
	}
	if _, exists := g.entities[entity.Name]; exists {
		return fmt.Errorf("scene: entity %s already exists", entity.Name)
	}
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}
	g.entities[entity.Name] = entity
	return nil
}

// RemoveEntity implements Scene.
func (g *Graph) RemoveEntity(name string) bool {
	if _, ok := g.entities[name]; !ok {
		return false
	}
	delete(g.entities, name)
	return true
}

// Entities implements Scene, sorted by name.
func (g *Graph) Entities() []*Entity {
	out := make([]*Entity, 0, len(g.entities))
	for _, entity := range g.entities {
		out = append(out, entity)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Advance steps every running animation by delta seconds. The host calls it
// once per frame after the director has ticked.
func (g *Graph) Advance(delta float64) {
	for _, entity := range g.entities {
		if entity.Animation != nil {
			entity.Animation.Advance(delta)
		}
	}
}
