package missions

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"
)

//go:embed catalog/missions.json
var catalogFS embed.FS

// ErrInvalidCatalog wraps every catalog parsing or validation failure.
var ErrInvalidCatalog = errors.New("invalid mission catalog")

// catalogSchema describes the catalog file: an array of mission records.
var catalogSchema = map[string]any{
	"type": "array",
	"items": map[string]any{
		"type":     "object",
		"required": []any{"id", "title", "target", "xpReward", "category"},
		"properties": map[string]any{
			"id":          map[string]any{"type": "string", "minLength": 1},
			"title":       map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"target":      map[string]any{"type": "integer", "minimum": 1},
			"xpReward":    map[string]any{"type": "integer", "minimum": 0},
			"category":    map[string]any{"enum": []any{"daily", "weekly", "progression"}},
		},
	},
}

var (
	compiledOnce   sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func getCompiledSchema() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		// The compiler expects a decoded JSON value, not Go literals.
		defBytes, err := json.Marshal(catalogSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema definition: %w", err)
			return
		}
		var defParsed any
		if err := json.Unmarshal(defBytes, &defParsed); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		const url = "schema://mission-catalog.json"
		if err := c.AddResource(url, defParsed); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(url)
	})
	return compiledSchema, compileErr
}

// Catalog is the immutable set of missions loaded at startup.
type Catalog struct {
	missions []Mission
	byID     map[string]int
}

// NewCatalog builds a catalog, rejecting duplicate ids, non-positive targets
// and unknown categories.
func NewCatalog(missions []Mission) (*Catalog, error) {
	var errs []string
	byID := make(map[string]int, len(missions))
	for i, m := range missions {
		if m.ID == "" {
			errs = append(errs, fmt.Sprintf("mission %d has an empty id", i))
		}
		if _, dup := byID[m.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate mission id: %q", m.ID))
		}
		if m.Target <= 0 {
			errs = append(errs, fmt.Sprintf("mission %q has non-positive target %d", m.ID, m.Target))
		}
		if m.XPReward < 0 {
			errs = append(errs, fmt.Sprintf("mission %q has negative xp reward %d", m.ID, m.XPReward))
		}
		if !m.Category.IsValid() {
			errs = append(errs, fmt.Sprintf("mission %q has unknown category %q", m.ID, m.Category))
		}
		byID[m.ID] = i
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(errs, "; "))
	}

	owned := make([]Mission, len(missions))
	copy(owned, missions)
	return &Catalog{missions: owned, byID: byID}, nil
}

// EmptyCatalog returns a catalog with no missions.
func EmptyCatalog() *Catalog {
	return &Catalog{byID: map[string]int{}}
}

// ParseCatalog decodes and validates a JSON catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrInvalidCatalog, err)
	}

	schema, err := getCompiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	var missions []Mission
	if err := json.Unmarshal(data, &missions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return NewCatalog(missions)
}

// LoadCatalog reads and validates the catalog file at path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// LoadCatalogOrEmpty loads the catalog at path, or the built-in catalog when
// path is empty. Any failure is logged and yields an empty catalog.
func LoadCatalogOrEmpty(path string, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		return DefaultCatalog()
	}
	c, err := LoadCatalog(path)
	if err != nil {
		logger.Warn("mission catalog unavailable, continuing without missions",
			zap.String("path", path), zap.Error(err))
		return EmptyCatalog()
	}
	return c
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// DefaultCatalog returns the built-in catalog. It panics if the embedded
// file is invalid, which the package tests rule out.
func DefaultCatalog() *Catalog {
	defaultOnce.Do(func() {
		data, err := catalogFS.ReadFile("catalog/missions.json")
		if err != nil {
			panic(fmt.Sprintf("missions: read embedded catalog: %v", err))
		}
		c, err := ParseCatalog(data)
		if err != nil {
			panic(fmt.Sprintf("missions: embedded catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// All returns a copy of the missions in catalog order.
func (c *Catalog) All() []Mission {
	out := make([]Mission, len(c.missions))
	copy(out, c.missions)
	return out
}

// Get returns the mission with the given id.
func (c *Catalog) Get(id string) (Mission, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Mission{}, false
	}
	return c.missions[i], true
}

// ByCategory returns the missions of one category in catalog order.
func (c *Catalog) ByCategory(cat Category) []Mission {
	var out []Mission
	for _, m := range c.missions {
		if m.Category == cat {
			out = append(out, m)
		}
	}
	return out
}

// Len returns the number of missions.
func (c *Catalog) Len() int {
	return len(c.missions)
}
