// internal/models/context.go
package models

import "strings"

// Context field names accepted by the story context store
const (
	ContextFieldGenre             = "genre"
	ContextFieldStyle             = "style"
	ContextFieldSynopsis          = "synopsis"
	ContextFieldCharacters        = "characters"
	ContextFieldWorldbuilding     = "worldbuilding"
	ContextFieldOutline           = "outline"
	ContextFieldTargetAudienceAge = "target_audience_age"
)

// ContextFields lists every story context field in a stable order
var ContextFields = []string{
	ContextFieldGenre,
	ContextFieldStyle,
	ContextFieldSynopsis,
	ContextFieldCharacters,
	ContextFieldWorldbuilding,
	ContextFieldOutline,
	ContextFieldTargetAudienceAge,
}

// StoryContext is the structured metadata attached to generation requests to
// steer output. All fields are free text and optional.
type StoryContext struct {
	Genre             string `json:"genre"`
	Style             string `json:"style"`
	Synopsis          string `json:"synopsis"`
	Characters        string `json:"characters"`
	Worldbuilding     string `json:"worldbuilding"`
	Outline           string `json:"outline"`
	TargetAudienceAge string `json:"target_audience_age"`
}

// IsBlank reports whether every field is empty or whitespace-only. Requests
// omit the whole context object in that case.
func (c *StoryContext) IsBlank() bool {
	if c == nil {
		return true
	}
	for _, v := range []string{
		c.Genre, c.Style, c.Synopsis, c.Characters,
		c.Worldbuilding, c.Outline, c.TargetAudienceAge,
	} {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Field returns the value of the named field and whether the name is known
func (c *StoryContext) Field(name string) (string, bool) {
	switch name {
	case ContextFieldGenre:
		return c.Genre, true
	case ContextFieldStyle:
		return c.Style, true
	case ContextFieldSynopsis:
		return c.Synopsis, true
	case ContextFieldCharacters:
		return c.Characters, true
	case ContextFieldWorldbuilding:
		return c.Worldbuilding, true
	case ContextFieldOutline:
		return c.Outline, true
	case ContextFieldTargetAudienceAge:
		return c.TargetAudienceAge, true
	default:
		return "", false
	}
}

// SetField assigns the named field and reports whether the name is known
func (c *StoryContext) SetField(name, value string) bool {
	switch name {
	case ContextFieldGenre:
		c.Genre = value
	case ContextFieldStyle:
		c.Style = value
	case ContextFieldSynopsis:
		c.Synopsis = value
	case ContextFieldCharacters:
		c.Characters = value
	case ContextFieldWorldbuilding:
		c.Worldbuilding = value
	case ContextFieldOutline:
		c.Outline = value
	case ContextFieldTargetAudienceAge:
		c.TargetAudienceAge = value
	default:
		return false
	}
	return true
}
