package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Selector is a named CSS selector tried when extracting page content
type Selector struct {
	Name string `yaml:"name"`
	CSS  string `yaml:"css"`
}

// Source defines a documentation site and how to find its main content
type Source struct {
	Name        string     `yaml:"name"`        // Lookup key (e.g., "paper")
	Title       string     `yaml:"title"`       // Display name used in messages (e.g., "Paper")
	BaseURL     string     `yaml:"base_url"`    // Section paths are appended to this
	Selectors   []Selector `yaml:"selectors"`   // Tried in order, first match wins
	Description string     `yaml:"description"` // Tool description
}

// Predefined documentation sources
var (
	SourcePaper = Source{
		Name:    "paper",
		Title:   "Paper",
		BaseURL: "https://docs.papermc.io/paper",
		Selectors: []Selector{
			{Name: "main_content", CSS: "main"},
			{Name: "article", CSS: "article"},
			{Name: "content", CSS: ".content"},
			{Name: "docs", CSS: ".docs-content"},
		},
		Description: "Paper is a high-performance Minecraft server platform. " +
			"Fetches the latest documentation from docs.papermc.io.",
	}

	SourceLeaf = Source{
		Name:    "leaf",
		Title:   "Leaf",
		BaseURL: "https://www.leafmc.one/ru",
		Selectors: []Selector{
			{Name: "main_content", CSS: "main"},
			{Name: "article", CSS: "article"},
			{Name: "content", CSS: ".content"},
			{Name: "docs", CSS: ".docs-content"},
		},
		Description: "Leaf is a Paper fork with additional optimizations. " +
			"Fetches documentation from www.leafmc.one (Russian locale).",
	}

	SourcePurpur = Source{
		Name:    "purpur",
		Title:   "Purpur",
		BaseURL: "https://purpurmc.org/docs/purpur",
		Selectors: []Selector{
			{Name: "main_content", CSS: "main"},
			{Name: "article", CSS: "article"},
			{Name: "content", CSS: ".content"},
			{Name: "markdown", CSS: ".markdown-body"},
		},
		Description: "Purpur is a Paper fork with extensive configuration options. " +
			"Fetches documentation from purpurmc.org.",
	}

	SourceWiki = Source{
		Name:    "wiki",
		Title:   "Minecraft Wiki",
		BaseURL: "https://minecraft.wiki/w",
		Selectors: []Selector{
			{Name: "content", CSS: "#mw-content-text"},
			{Name: "parser_output", CSS: ".mw-parser-output"},
			{Name: "main", CSS: "main"},
		},
		Description: "The official Minecraft Wiki: game mechanics, blocks, items, mobs and more.",
	}
)

var sourceAliases = map[string]string{
	"papermc":        "paper",
	"leafmc":         "leaf",
	"purpurmc":       "purpur",
	"minecraft-wiki": "wiki",
}

// Sources is a set of documentation sources keyed by name
type Sources map[string]Source

// DefaultSources returns the predefined sources
func DefaultSources() Sources {
	return Sources{
		SourcePaper.Name:  SourcePaper,
		SourceLeaf.Name:   SourceLeaf,
		SourcePurpur.Name: SourcePurpur,
		SourceWiki.Name:   SourceWiki,
	}
}

// Get returns a source by name or alias
func (s Sources) Get(name string) (*Source, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := sourceAliases[key]; ok {
		key = alias
	}

	src, ok := s[key]
	if !ok {
		return nil, fmt.Errorf("unknown documentation source: %s (known: %s)", name, strings.Join(s.Names(), ", "))
	}
	return &src, nil
}

// Names returns the source names sorted alphabetically
func (s Sources) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetSource returns a predefined source by name or alias
func GetSource(name string) (*Source, error) {
	return DefaultSources().Get(name)
}

// Validate checks that a source can be fetched
func (s *Source) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("source has no name")
	}
	if strings.TrimSpace(s.BaseURL) == "" {
		return fmt.Errorf("source %q has no base_url", s.Name)
	}
	if len(s.Selectors) == 0 {
		return fmt.Errorf("source %q has no selectors", s.Name)
	}
	for i, sel := range s.Selectors {
		if strings.TrimSpace(sel.CSS) == "" {
			return fmt.Errorf("source %q selector %d has no css", s.Name, i)
		}
	}
	return nil
}

// URL returns the page URL for a section, or the base URL when section is empty
func (s *Source) URL(section string) string {
	base := strings.TrimSuffix(s.BaseURL, "/")
	section = strings.Trim(section, "/")
	if section == "" {
		return base
	}
	return base + "/" + section
}

// SelectorNames returns the selector names in order
func (s *Source) SelectorNames() []string {
	names := make([]string, len(s.Selectors))
	for i, sel := range s.Selectors {
		names[i] = sel.Name
		if names[i] == "" {
			names[i] = sel.CSS
		}
	}
	return names
}

type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}

// LoadSources merges the predefined sources with those in a YAML file.
// Entries replace predefined sources of the same name.
func LoadSources(path string) (Sources, error) {
	sources := DefaultSources()
	if path == "" {
		return sources, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file %s: %w", path, err)
	}

	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources file %s: %w", path, err)
	}

	for _, src := range file.Sources {
		src.Name = strings.ToLower(strings.TrimSpace(src.Name))
		if err := src.Validate(); err != nil {
			return nil, fmt.Errorf("invalid source in %s: %w", path, err)
		}
		existing, known := sources[src.Name]
		if src.Title == "" {
			if known {
				src.Title = existing.Title
			} else {
				src.Title = src.Name
			}
		}
		if src.Description == "" && known {
			src.Description = existing.Description
		}
		sources[src.Name] = src
	}

	return sources, nil
}
