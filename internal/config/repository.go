package config

import (
	"fmt"
	"sort"
	"strings"
)

// Repository identifies a GitHub repository
type Repository struct {
	Owner string
	Repo  string
}

// FullName returns the full repository name (owner/repo)
func (r Repository) FullName() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Repo)
}

// Release repositories of the server platforms
var platformRepositories = map[string]Repository{
	"paper":  {Owner: "PaperMC", Repo: "Paper"},
	"purpur": {Owner: "PurpurMC", Repo: "Purpur"},
	"leaf":   {Owner: "Winds-Studio", Repo: "Leaf"},
}

// GetPlatform returns the release repository for a platform name or alias
func GetPlatform(name string) (Repository, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := sourceAliases[key]; ok {
		key = alias
	}

	repo, ok := platformRepositories[key]
	if !ok {
		return Repository{}, fmt.Errorf("unknown platform: %s (known: %s)", name, strings.Join(PlatformNames(), ", "))
	}
	return repo, nil
}

// PlatformNames returns the known platform names sorted alphabetically
func PlatformNames() []string {
	names := make([]string, 0, len(platformRepositories))
	for name := range platformRepositories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseRepository parses "owner/repo" format or a GitHub URL
func ParseRepository(repoStr string) (Repository, error) {
	repoStr = strings.TrimSpace(repoStr)

	// https://github.com/owner/repo/releases -> owner/repo
	if strings.Contains(repoStr, "github.com") {
		parts := strings.Split(repoStr, "github.com/")
		if len(parts) == 2 {
			repoStr = strings.TrimSuffix(parts[1], "/")
			repoStr = strings.Split(repoStr, "/releases")[0]
			repoStr = strings.Split(repoStr, "/tags")[0]
			repoStr = strings.TrimSuffix(repoStr, ".git")
		}
	}

	parts := strings.Split(repoStr, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Repository{}, fmt.Errorf("invalid repository format: %s (expected: owner/repo)", repoStr)
	}

	return Repository{Owner: parts[0], Repo: parts[1]}, nil
}
