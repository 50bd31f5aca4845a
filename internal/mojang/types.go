// Package mojang is a client for the public Mojang player and session APIs.
package mojang

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PlayerID is the response of the username lookup
type PlayerID struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Property is a signed profile property such as "textures"
type Property struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Signature string `json:"signature,omitempty"`
}

// Profile is a session server player profile
type Profile struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Properties []Property `json:"properties,omitempty"`
}

// Textures describes a player's skin and cape
type Textures struct {
	SkinURL   string
	SkinModel string // "classic" or "slim"
	CapeURL   string
}

type texturesPayload struct {
	Textures struct {
		Skin *struct {
			URL      string `json:"url"`
			Metadata struct {
				Model string `json:"model"`
			} `json:"metadata"`
		} `json:"SKIN"`
		Cape *struct {
			URL string `json:"url"`
		} `json:"CAPE"`
	} `json:"textures"`
}

// Textures decodes the base64 "textures" property. It returns nil when the
// profile has no such property or it cannot be decoded.
func (p *Profile) Textures() *Textures {
	for _, prop := range p.Properties {
		if prop.Name != "textures" {
			continue
		}

		raw, err := base64.StdEncoding.DecodeString(prop.Value)
		if err != nil {
			return nil
		}

		var payload texturesPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil
		}

		textures := &Textures{}
		if payload.Textures.Skin != nil {
			textures.SkinURL = payload.Textures.Skin.URL
			textures.SkinModel = "classic"
			if payload.Textures.Skin.Metadata.Model == "slim" {
				textures.SkinModel = "slim"
			}
		}
		if payload.Textures.Cape != nil {
			textures.CapeURL = payload.Textures.Cape.URL
		}
		return textures
	}
	return nil
}

// ServiceState is the health of a Mojang service
type ServiceState string

const (
	StateOnline   ServiceState = "online"
	StateDegraded ServiceState = "degraded"
	StateOffline  ServiceState = "offline"
)

// ServiceStatus is the result of probing one service
type ServiceStatus struct {
	Service string       `json:"service"`
	State   ServiceState `json:"state"`
}

// ValidateUsername checks the Minecraft username rules: 3-16 characters,
// ASCII letters, digits and underscores, at least one letter or digit.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("username cannot be empty")
	}

	alnum := 0
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			alnum++
		case r == '_':
		default:
			return invalidUsername(username)
		}
	}

	if alnum == 0 || len(username) < 3 || len(username) > 16 {
		return invalidUsername(username)
	}
	return nil
}

func invalidUsername(username string) error {
	return fmt.Errorf("invalid username format: '%s'. Must be 3-16 alphanumeric characters or underscores", username)
}

// NormalizeUUID removes dashes and validates that 32 hex digits remain
func NormalizeUUID(id string) (string, error) {
	clean := strings.ReplaceAll(id, "-", "")
	if len(clean) != 32 {
		return "", fmt.Errorf("invalid UUID format: '%s'", id)
	}
	if _, err := uuid.Parse(clean); err != nil {
		return "", fmt.Errorf("invalid UUID format: '%s'", id)
	}
	return clean, nil
}

// FormatUUID renders an undashed UUID in canonical dashed form. Invalid input
// is returned unchanged.
func FormatUUID(id string) string {
	clean, err := NormalizeUUID(id)
	if err != nil {
		return id
	}
	return uuid.MustParse(clean).String()
}
