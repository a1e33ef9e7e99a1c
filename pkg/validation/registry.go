package validation

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/odanree/llm-local-assistant-sub008/pkg/workspace"
)

// Pattern is a single rule inside a profile: a regex that either must be
// present (mustHave) or must be absent (forbidden). A non-nil AppliesIf
// restricts the rule to snapshots where that idiom actually occurs.
type Pattern struct {
	ID        string
	Regex     *regexp.Regexp
	AppliesIf *regexp.Regexp
	Message   string
	Severity  Severity
}

// RuleProfile is the data describing one domain's architectural rules.
// Profiles are data, not code coupled to callers; the registry is queried
// by content, never by file path.
type RuleProfile struct {
	ID              string
	Domain          Domain
	Priority        int // lower number wins; the ordering is an invariant
	Selectors       []*regexp.Regexp
	MustHave        []Pattern
	Forbidden       []Pattern
	SuppressedRules []string
}

// matches reports whether any selector matches the content.
func (p *RuleProfile) matches(content string) bool {
	for _, sel := range p.Selectors {
		if sel.MatchString(content) {
			return true
		}
	}
	return false
}

// Registry holds the rule profiles in priority order. It is constructed
// explicitly and passed into the validator at startup; after init it is
// stateless.
type Registry struct {
	profiles []*RuleProfile
}

// NewRegistry creates a registry seeded with the built-in profiles.
func NewRegistry() *Registry {
	r := &Registry{}
	r.profiles = builtinProfiles()
	r.sortByPriority()
	return r
}

func (r *Registry) sortByPriority() {
	sort.SliceStable(r.profiles, func(i, j int) bool {
		return r.profiles[i].Priority < r.profiles[j].Priority
	})
}

// FindProfile returns the highest-priority profile whose selector matches
// the content. Exactly one profile is selected per snapshot; the generic
// fallback matches everything.
func (r *Registry) FindProfile(content string) *RuleProfile {
	for _, p := range r.profiles {
		if p.matches(content) {
			return p
		}
	}
	// The built-in set always ends with the generic catch-all, but an
	// overlay-only registry might not.
	return &RuleProfile{ID: "generic", Domain: DomainGeneric, Priority: 1000}
}

// overlayProfile is the YAML shape of a profile overlay.
type overlayProfile struct {
	ID              string           `yaml:"id"`
	Domain          string           `yaml:"domain"`
	Priority        int              `yaml:"priority"`
	MatchAny        []string         `yaml:"match_any"`
	MustHave        []overlayPattern `yaml:"must_have"`
	Forbidden       []overlayPattern `yaml:"forbidden"`
	SuppressedRules []string         `yaml:"suppressed_rules"`
}

type overlayPattern struct {
	ID        string `yaml:"id"`
	Pattern   string `yaml:"pattern"`
	AppliesIf string `yaml:"applies_if"`
	Message   string `yaml:"message"`
	Severity  string `yaml:"severity"`
}

// LoadOverlay reads additional profiles from a YAML file. A profile with
// an existing ID replaces the built-in one; new IDs are added.
func (r *Registry) LoadOverlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return workspace.NewConfigError(path, err)
	}
	var overlays []overlayProfile
	if err := yaml.Unmarshal(data, &overlays); err != nil {
		return workspace.NewConfigError(path, err)
	}

	for _, o := range overlays {
		profile, buildErr := buildOverlayProfile(o)
		if buildErr != nil {
			return buildErr
		}
		replaced := false
		for i, existing := range r.profiles {
			if existing.ID == profile.ID {
				r.profiles[i] = profile
				replaced = true
				break
			}
		}
		if !replaced {
			r.profiles = append(r.profiles, profile)
		}
	}
	r.sortByPriority()
	return nil
}

func buildOverlayProfile(o overlayProfile) (*RuleProfile, error) {
	if o.ID == "" {
		return nil, workspace.NewConfigError("rule profile overlay", fmt.Errorf("profile is missing an id"))
	}
	profile := &RuleProfile{
		ID:              o.ID,
		Domain:          Domain(o.Domain),
		Priority:        o.Priority,
		SuppressedRules: o.SuppressedRules,
	}
	for _, raw := range o.MatchAny {
		re, err := regexp.Compile(raw)
		if err != nil {
			return nil, workspace.NewConfigError(o.ID, fmt.Errorf("bad selector %q: %w", raw, err))
		}
		profile.Selectors = append(profile.Selectors, re)
	}
	var err error
	if profile.MustHave, err = buildPatterns(o.ID, o.MustHave); err != nil {
		return nil, err
	}
	if profile.Forbidden, err = buildPatterns(o.ID, o.Forbidden); err != nil {
		return nil, err
	}
	return profile, nil
}

func buildPatterns(profileID string, raw []overlayPattern) ([]Pattern, error) {
	var patterns []Pattern
	for _, rp := range raw {
		re, err := regexp.Compile(rp.Pattern)
		if err != nil {
			return nil, workspace.NewConfigError(profileID, fmt.Errorf("bad pattern %q: %w", rp.Pattern, err))
		}
		severity := SeverityError
		if rp.Severity == string(SeverityWarning) {
			severity = SeverityWarning
		}
		pattern := Pattern{ID: rp.ID, Regex: re, Message: rp.Message, Severity: severity}
		if rp.AppliesIf != "" {
			applies, appliesErr := regexp.Compile(rp.AppliesIf)
			if appliesErr != nil {
				return nil, workspace.NewConfigError(profileID, fmt.Errorf("bad applies_if %q: %w", rp.AppliesIf, appliesErr))
			}
			pattern.AppliesIf = applies
		}
		patterns = append(patterns, pattern)
	}
	return patterns, nil
}
