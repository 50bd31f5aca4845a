package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetSource(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
		wantErr  bool
	}{
		{name: "paper", input: "paper", wantName: "paper"},
		{name: "alias", input: "PaperMC", wantName: "paper"},
		{name: "purpur", input: "purpur", wantName: "purpur"},
		{name: "leaf alias", input: "leafmc", wantName: "leaf"},
		{name: "wiki alias", input: "minecraft-wiki", wantName: "wiki"},
		{name: "unknown", input: "spigot", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := GetSource(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("GetSource() error = %v", err)
			}
			if src.Name != tt.wantName {
				t.Errorf("Name = %v, want %v", src.Name, tt.wantName)
			}
		})
	}
}

func TestSource_URL(t *testing.T) {
	tests := []struct {
		name    string
		section string
		want    string
	}{
		{name: "index", section: "", want: "https://docs.papermc.io/paper"},
		{name: "section", section: "admin/reference/configuration", want: "https://docs.papermc.io/paper/admin/reference/configuration"},
		{name: "slashes trimmed", section: "/admin/", want: "https://docs.papermc.io/paper/admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SourcePaper.URL(tt.section); got != tt.want {
				t.Errorf("URL() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSource_SelectorNames(t *testing.T) {
	names := SourcePurpur.SelectorNames()
	want := []string{"main_content", "article", "content", "markdown"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %v, want %v", i, names[i], want[i])
		}
	}
}

func TestLoadSources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	content := `sources:
  - name: Paper
    base_url: https://mirror.example.com/paper
    selectors:
      - name: body
        css: "#docs"
  - name: folia
    title: Folia
    base_url: https://docs.papermc.io/folia
    selectors:
      - css: main
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write sources: %v", err)
	}

	sources, err := LoadSources(path)
	if err != nil {
		t.Fatalf("LoadSources() error = %v", err)
	}

	paper, err := sources.Get("paper")
	if err != nil {
		t.Fatalf("Get(paper) error = %v", err)
	}
	if paper.BaseURL != "https://mirror.example.com/paper" {
		t.Errorf("BaseURL = %v, want mirror", paper.BaseURL)
	}
	if paper.Title != "Paper" {
		t.Errorf("Title = %v, want inherited Paper", paper.Title)
	}
	if paper.Description != SourcePaper.Description {
		t.Errorf("Description = %q, want inherited", paper.Description)
	}

	folia, err := sources.Get("folia")
	if err != nil {
		t.Fatalf("Get(folia) error = %v", err)
	}
	if got := folia.SelectorNames(); got[0] != "main" {
		t.Errorf("selector name fallback = %v, want main", got[0])
	}

	if _, err := sources.Get("wiki"); err != nil {
		t.Errorf("predefined wiki source lost: %v", err)
	}
}

func TestLoadSources_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "missing base url", content: "sources:\n  - name: x\n    selectors:\n      - css: main\n"},
		{name: "no selectors", content: "sources:\n  - name: x\n    base_url: https://x\n"},
		{name: "bad yaml", content: "sources: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sources.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("failed to write: %v", err)
			}
			if _, err := LoadSources(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadSources_EmptyPath(t *testing.T) {
	sources, err := LoadSources("")
	if err != nil {
		t.Fatalf("LoadSources() error = %v", err)
	}
	if len(sources) != 4 {
		t.Errorf("expected 4 predefined sources, got %d", len(sources))
	}
}
