// Package profile loads and edits the candidate profile the scorer matches
// postings against.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jobsniper-dev/jobsniper/internal/model"
)

// Default is the profile used when no profile file exists yet.
func Default() model.Profile {
	return model.Profile{
		TargetRole: "AI Intern",
		Skills:     []string{"Python"},
	}
}

// Load reads the profile from path. A missing file is not an error: the
// default profile is returned so a fresh install can audit immediately.
func Load(path string) (model.Profile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("reading profile: %w", err)
	}

	var p model.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Profile{}, fmt.Errorf("parsing profile: %w", err)
	}
	return p, nil
}

// Save writes the profile to path as indented JSON.
func Save(path string, p model.Profile) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing profile: %w", err)
	}
	return nil
}

// AddSkill appends a skill to the profile at path and saves it. Duplicate
// skills (case-insensitive) are rejected.
func AddSkill(path, skill string) error {
	p, err := Load(path)
	if err != nil {
		return err
	}
	for _, s := range p.Skills {
		if strings.EqualFold(s, skill) {
			return fmt.Errorf("skill %q already exists", skill)
		}
	}
	p.Skills = append(p.Skills, skill)
	return Save(path, p)
}

// RemoveSkill removes a skill (case-insensitive) from the profile at path.
func RemoveSkill(path, skill string) error {
	p, err := Load(path)
	if err != nil {
		return err
	}
	kept := p.Skills[:0]
	removed := false
	for _, s := range p.Skills {
		if strings.EqualFold(s, skill) {
			removed = true
			continue
		}
		kept = append(kept, s)
	}
	if !removed {
		return fmt.Errorf("skill %q not found", skill)
	}
	p.Skills = kept
	return Save(path, p)
}

// Summary renders a human-readable view of the profile.
func Summary(p model.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Target role: %s\n", p.TargetRole)
	fmt.Fprintf(&b, "Skills (%d): %s\n", len(p.Skills), strings.Join(p.Skills, ", "))
	if len(p.Preferences.Locations) > 0 {
		fmt.Fprintf(&b, "Locations: %s\n", strings.Join(p.Preferences.Locations, ", "))
	}
	if p.Preferences.WorkType != "" {
		fmt.Fprintf(&b, "Work type: %s\n", p.Preferences.WorkType)
	}
	return b.String()
}
