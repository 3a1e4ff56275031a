// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "github.com/almuwaffaq/muwaffaq-tui/internal/lang"

// =============================================================================
// ANSWER DEPTH
// =============================================================================

// Depth is the preferred level of detail for answers.
type Depth string

const (
	DepthSimple    Depth = "simple"
	DepthDetailed  Depth = "detailed"
	DepthScholarly Depth = "scholarly"
)

// Depths returns all valid depth preferences.
func Depths() []Depth {
	return []Depth{DepthSimple, DepthDetailed, DepthScholarly}
}

// ParseDepth maps a stored string to a depth, falling back to detailed.
func ParseDepth(s string) Depth {
	for _, d := range Depths() {
		if string(d) == s {
			return d
		}
	}
	return DepthDetailed
}

// String returns the depth name as used in prompt control tags.
func (d Depth) String() string {
	return string(d)
}

// =============================================================================
// USER PREFERENCES
// =============================================================================

// UserPreferences is the singleton user-facing configuration record.
type UserPreferences struct {
	Name     string        `json:"name"`
	Location string        `json:"location"`
	Depth    Depth         `json:"depthPreference"`
	Language lang.Language `json:"language"`
}

// DefaultPreferences returns the startup defaults: empty identity,
// detailed answers, first supported language.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		Name:     "",
		Location: "",
		Depth:    DepthDetailed,
		Language: lang.Default(),
	}
}

// Normalize clamps loaded values back into the supported sets so a stale
// or hand-edited record cannot put the composer into an unknown state.
func (p UserPreferences) Normalize() UserPreferences {
	p.Depth = ParseDepth(string(p.Depth))
	p.Language = lang.Parse(string(p.Language))
	return p
}

// PreferencePatch is a partial preference update. Nil fields are left
// unchanged by the merge.
type PreferencePatch struct {
	Name     *string
	Location *string
	Depth    *Depth
	Language *lang.Language
}

// Apply merges the patch into a copy of the preferences and returns it.
func (p UserPreferences) Apply(patch PreferencePatch) UserPreferences {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	if patch.Depth != nil {
		p.Depth = *patch.Depth
	}
	if patch.Language != nil {
		p.Language = *patch.Language
	}
	return p.Normalize()
}
