// Package aiworker holds the built-in assistant personas and their canned
// replies. No model inference happens here.
package aiworker

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode/utf8"

	"workstation/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

const (
	topicPlaceholder = "{topic}"
	maxTopicRunes    = 80
)

// Persona is one worker definition.
type Persona struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Icon        string   `yaml:"icon"`
	Description string   `yaml:"description"`
	Replies     []string `yaml:"replies"`
}

// Tool is a catalog tool entry.
type Tool struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
	Category    string `yaml:"category"`
	Order       int    `yaml:"order"`
}

// Catalog is the parsed persona and tool list.
type Catalog struct {
	Workers []Persona `yaml:"workers"`
	Tools   []Tool    `yaml:"tools"`

	byType map[string]*Persona
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse ai catalog: %w", err)
	}

	c.byType = make(map[string]*Persona, len(c.Workers))
	for i := range c.Workers {
		p := &c.Workers[i]
		if p.Type == "" || p.Name == "" {
			return nil, fmt.Errorf("ai catalog worker %d: name and type are required", i)
		}
		if len(p.Replies) == 0 {
			return nil, fmt.Errorf("ai catalog worker %q has no replies", p.Type)
		}
		if _, dup := c.byType[p.Type]; dup {
			return nil, fmt.Errorf("ai catalog worker type %q is duplicated", p.Type)
		}
		c.byType[p.Type] = p
	}
	return &c, nil
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Persona looks up a worker by type.
func (c *Catalog) Persona(workerType string) (*Persona, bool) {
	p, ok := c.byType[workerType]
	return p, ok
}

// WorkerModels converts the personas to rows for upsert.
func (c *Catalog) WorkerModels() []models.AIWorker {
	out := make([]models.AIWorker, 0, len(c.Workers))
	for _, p := range c.Workers {
		out = append(out, models.AIWorker{
			Name:        p.Name,
			WorkerType:  p.Type,
			Description: p.Description,
			Icon:        p.Icon,
			IsActive:    true,
		})
	}
	return out
}

// ToolModels converts the tools to rows for upsert.
func (c *Catalog) ToolModels() []models.AITool {
	out := make([]models.AITool, 0, len(c.Tools))
	for _, t := range c.Tools {
		out = append(out, models.AITool{
			Name:        t.Name,
			Description: t.Description,
			Icon:        t.Icon,
			Category:    t.Category,
			Order:       t.Order,
			IsActive:    true,
		})
	}
	return out
}

// Reply picks the persona template for turn and fills in the topic taken
// from the user's message. The same inputs always give the same reply.
func (p *Persona) Reply(message string, turn int) string {
	if turn < 0 {
		turn = 0
	}
	tmpl := p.Replies[turn%len(p.Replies)]
	return strings.ReplaceAll(tmpl, topicPlaceholder, topicOf(message))
}

func topicOf(message string) string {
	topic := strings.Join(strings.Fields(message), " ")
	if topic == "" {
		return "your idea"
	}
	if utf8.RuneCountInString(topic) > maxTopicRunes {
		topic = strings.TrimSpace(string([]rune(topic)[:maxTopicRunes])) + "..."
	}
	return topic
}
