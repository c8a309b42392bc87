// ABOUTME: Agent descriptors and the in-memory catalog used to browse them
// ABOUTME: Loads YAML catalogs (embedded default or file) with validation

package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/2389/toolhouse-hub/internal/icons"
)

// AllCategories is the pseudo-category that matches every agent.
const AllCategories = "All"

// ErrNotFound is returned when an agent id is not in the catalog.
var ErrNotFound = errors.New("agent not found")

//go:embed agents.yaml
var defaultCatalog []byte

// Agent is an immutable descriptor of a preconfigured chat agent.
type Agent struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	Color       string   `yaml:"color"`
	Icon        string   `yaml:"icon"`
	Endpoint    string   `yaml:"endpoint"`
	Suggestions []string `yaml:"suggestions"`
	Featured    bool     `yaml:"featured"`
}

// IconGlyph returns the terminal glyph for the agent's icon.
func (a Agent) IconGlyph() string {
	return icons.Parse(a.Icon).Glyph()
}

// file is the on-disk shape of a catalog.
type file struct {
	Categories []string `yaml:"categories"`
	Agents     []Agent  `yaml:"agents"`
}

// Catalog is a validated, read-only set of agents.
type Catalog struct {
	categories []string
	agents     []Agent
	byID       map[string]int
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultCatalog))
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load parses and validates a YAML catalog.
func Load(r io.Reader) (*Catalog, error) {
	var raw file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	return New(raw.Categories, raw.Agents)
}

// New builds a catalog from already-decoded categories and agents.
func New(categories []string, agents []Agent) (*Catalog, error) {
	c := &Catalog{
		categories: append([]string(nil), categories...),
		agents:     make([]Agent, 0, len(agents)),
		byID:       make(map[string]int, len(agents)),
	}

	known := make(map[string]bool, len(categories))
	for _, cat := range categories {
		if cat == "" || cat == AllCategories {
			return nil, fmt.Errorf("invalid category %q", cat)
		}
		known[cat] = true
	}

	for i, a := range agents {
		if err := validateAgent(a, known); err != nil {
			return nil, fmt.Errorf("agent %d (%s): %w", i, a.ID, err)
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate agent id %q", a.ID)
		}
		a.Suggestions = append([]string(nil), a.Suggestions...)
		c.byID[a.ID] = len(c.agents)
		c.agents = append(c.agents, a)
	}

	return c, nil
}

func validateAgent(a Agent, categories map[string]bool) error {
	if a.ID == "" {
		return errors.New("id is required")
	}
	if a.Name == "" {
		return errors.New("name is required")
	}
	if !categories[a.Category] {
		return fmt.Errorf("unknown category %q", a.Category)
	}
	u, err := url.Parse(a.Endpoint)
	if err != nil {
		return fmt.Errorf("endpoint is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("endpoint must use http or https scheme")
	}
	if u.Host == "" {
		return errors.New("endpoint host is required")
	}
	return nil
}

// List returns every agent in catalog order.
func (c *Catalog) List() []Agent {
	return cloneAgents(c.agents)
}

// Categories returns the category labels, starting with AllCategories.
func (c *Catalog) Categories() []string {
	out := make([]string, 0, len(c.categories)+1)
	out = append(out, AllCategories)
	return append(out, c.categories...)
}

// Find returns the agent with the given id.
func (c *Catalog) Find(id string) (Agent, error) {
	i, ok := c.byID[id]
	if !ok {
		return Agent{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return cloneAgent(c.agents[i]), nil
}

// Featured returns the agents marked as featured.
func (c *Catalog) Featured() []Agent {
	var out []Agent
	for _, a := range c.agents {
		if a.Featured {
			out = append(out, cloneAgent(a))
		}
	}
	return out
}

// Filter returns agents in category whose name or description contains query.
// An empty category or AllCategories matches every category; an empty query
// matches every agent.
func (c *Catalog) Filter(category, query string) []Agent {
	q := strings.ToLower(strings.TrimSpace(query))

	var out []Agent
	for _, a := range c.agents {
		if category != "" && category != AllCategories && a.Category != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(a.Name), q) &&
			!strings.Contains(strings.ToLower(a.Description), q) {
			continue
		}
		out = append(out, cloneAgent(a))
	}
	return out
}

func cloneAgents(in []Agent) []Agent {
	out := make([]Agent, len(in))
	for i, a := range in {
		out[i] = cloneAgent(a)
	}
	return out
}

func cloneAgent(a Agent) Agent {
	a.Suggestions = append([]string(nil), a.Suggestions...)
	return a
}
