package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/minecraft-mcp/minecraft-mcp-server/internal/cache"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/errs"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/mojang"
)

// StatusCacheKey is the cache key of the Mojang service status
const StatusCacheKey = "mojang:status"

type playerArgs struct {
	Username *string `json:"username"`
}

// PlayerCacheKey is the cache key of a player profile
func PlayerCacheKey(username string) string {
	return "player:" + strings.ToLower(username)
}

func (r *Registry) playerTool() *Tool {
	return &Tool{
		Name: "get_player_profile",
		Description: "Get Minecraft player profile from Mojang API. Retrieves player information " +
			"including UUID and profile data from Mojang's official API.",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"username": {
					Type:        "string",
					Description: "Minecraft player username (3-16 alphanumeric characters), e.g. \"Notch\", \"jeb_\"",
				},
			},
			Required: []string{"username"},
		},
		handler: func(ctx context.Context, raw json.RawMessage) (*Result, error) {
			var args playerArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			if args.Username == nil {
				return nil, fmt.Errorf("%w: username is required", ErrInvalidArguments)
			}
			return r.Player(ctx, *args.Username), nil
		},
	}
}

// Player looks up a player profile. Unknown players are reported as plain
// text and are not cached.
func (r *Registry) Player(ctx context.Context, username string) *Result {
	key := PlayerCacheKey(username)

	text, err := r.cached(ctx, key, cache.DefaultTTL, false, func(ctx context.Context) (fetchResult, error) {
		player, err := r.mojang.PlayerUUID(ctx, username)
		if err != nil {
			return fetchResult{}, err
		}
		if player == nil {
			return fetchResult{text: fmt.Sprintf("Player '%s' not found.", username)}, nil
		}

		profile, err := r.mojang.PlayerProfile(ctx, player.ID)
		if err != nil {
			return fetchResult{}, err
		}
		return fetchResult{text: FormatPlayer(player, profile), store: true}, nil
	})
	if err != nil {
		msg := errs.Message(err)
		switch {
		case errors.Is(err, errs.ErrAPI):
			return errorResult(r.logger, "Mojang API error: %s", msg)
		case errors.Is(err, errs.ErrNetwork):
			return errorResult(r.logger, "Network error accessing Mojang API: %s", msg)
		default:
			return errorResult(r.logger, "Unexpected error fetching player profile: %s", msg)
		}
	}
	return textResult(text)
}

// FormatPlayer renders a player and their profile. profile may be nil.
func FormatPlayer(player *mojang.PlayerID, profile *mojang.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Player: %s\nUUID: %s\n\n", player.Name, player.ID)

	if profile == nil {
		b.WriteString("Profile data not available.")
		return b.String()
	}

	if len(profile.Properties) > 0 {
		b.WriteString("Profile Properties:\n")
		for _, prop := range profile.Properties {
			name := prop.Name
			if name == "" {
				name = "unknown"
			}
			fmt.Fprintf(&b, "  - %s\n", name)
		}
	}

	if textures := profile.Textures(); textures != nil {
		b.WriteString("\nTextures:\n")
		if textures.SkinURL != "" {
			fmt.Fprintf(&b, "  Skin: %s (%s)\n", textures.SkinURL, textures.SkinModel)
		}
		if textures.CapeURL != "" {
			fmt.Fprintf(&b, "  Cape: %s\n", textures.CapeURL)
		}
	}

	return b.String()
}

func (r *Registry) statusTool() *Tool {
	return &Tool{
		Name: "get_server_status",
		Description: "Check Mojang services status. Checks whether Mojang's API services " +
			"are online, degraded, or offline.",
		InputSchema: Schema{Type: "object", Properties: map[string]Property{}},
		handler: func(ctx context.Context, raw json.RawMessage) (*Result, error) {
			if err := decodeArgs(raw, &struct{}{}); err != nil {
				return nil, err
			}
			return r.Status(ctx), nil
		},
	}
}

// Status reports the Mojang service status, cached for the status TTL
func (r *Registry) Status(ctx context.Context) *Result {
	text, err := r.cached(ctx, StatusCacheKey, r.statusTTL, false, func(ctx context.Context) (fetchResult, error) {
		status, err := r.mojang.ServiceStatus(ctx)
		if err != nil {
			return fetchResult{}, err
		}
		return fetchResult{text: FormatStatus(status), store: true}, nil
	})
	if err != nil {
		msg := errs.Message(err)
		if errors.Is(err, errs.ErrNetwork) {
			return errorResult(r.logger, "Network error checking Mojang status: %s", msg)
		}
		return errorResult(r.logger, "Unexpected error checking Mojang status: %s", msg)
	}
	return textResult(text)
}

// StatusSymbol returns the marker shown next to a service state
func StatusSymbol(state mojang.ServiceState) string {
	switch state {
	case mojang.StateOnline:
		return "✓"
	case mojang.StateDegraded:
		return "⚠"
	case mojang.StateOffline:
		return "✗"
	default:
		return "?"
	}
}

// FormatStatus renders service states one per line
func FormatStatus(status []mojang.ServiceStatus) string {
	var b strings.Builder
	b.WriteString("Mojang Services Status:\n\n")
	for _, s := range status {
		fmt.Fprintf(&b, "%s %s: %s\n", StatusSymbol(s.State), s.Service, strings.ToUpper(string(s.State)))
	}
	return b.String()
}
