package mode

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMode is returned when a selection names an unknown option.
var ErrInvalidMode = errors.New("invalid mode selection")

// Model picks which remote advisor answers the turn.
type Model string

const (
	Mentor Model = "Mentor"
	Expert Model = "Expert"
)

// Outlook tunes the tone of Mentor replies.
type Outlook string

const (
	Pessimistic Outlook = "Pessimistic"
	Practical   Outlook = "Practical"
	Optimistic  Outlook = "Optimistic"
)

// CoachingStyle tunes how Mentor guides the user.
type CoachingStyle string

const (
	Instructive  CoachingStyle = "Instructive"
	DefaultStyle CoachingStyle = "Default"
	Socratic     CoachingStyle = "Socratic"
)

// Models lists every model in display order.
func Models() []Model { return []Model{Mentor, Expert} }

// Outlooks lists every outlook in display order.
func Outlooks() []Outlook { return []Outlook{Pessimistic, Practical, Optimistic} }

// CoachingStyles lists every coaching style in display order.
func CoachingStyles() []CoachingStyle { return []CoachingStyle{Instructive, DefaultStyle, Socratic} }

// ParseModel matches a display name case-insensitively.
func ParseModel(raw string) (Model, error) {
	for _, m := range Models() {
		if strings.EqualFold(strings.TrimSpace(raw), string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: model %q", ErrInvalidMode, raw)
}

// ParseOutlook matches a display name case-insensitively.
func ParseOutlook(raw string) (Outlook, error) {
	for _, o := range Outlooks() {
		if strings.EqualFold(strings.TrimSpace(raw), string(o)) {
			return o, nil
		}
	}
	return "", fmt.Errorf("%w: outlook %q", ErrInvalidMode, raw)
}

// ParseCoachingStyle matches a display name case-insensitively.
func ParseCoachingStyle(raw string) (CoachingStyle, error) {
	for _, s := range CoachingStyles() {
		if strings.EqualFold(strings.TrimSpace(raw), string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: coaching style %q", ErrInvalidMode, raw)
}

// Selection is the user's current choice of model and Mentor tuning.
type Selection struct {
	Model         Model         `json:"model"`
	Outlook       Outlook       `json:"outlook,omitempty"`
	CoachingStyle CoachingStyle `json:"coachingStyle,omitempty"`
}

// Default is the selection every new session starts with.
func Default() Selection {
	return Selection{Model: Mentor, Outlook: Practical, CoachingStyle: DefaultStyle}
}

// Normalize fills unset fields with their defaults and rewrites known values
// in their canonical casing. Unknown values are left for Validate to reject.
func (s Selection) Normalize() Selection {
	def := Default()
	if s.Model == "" {
		s.Model = def.Model
	} else if m, err := ParseModel(string(s.Model)); err == nil {
		s.Model = m
	}
	if s.Outlook == "" {
		s.Outlook = def.Outlook
	} else if o, err := ParseOutlook(string(s.Outlook)); err == nil {
		s.Outlook = o
	}
	if s.CoachingStyle == "" {
		s.CoachingStyle = def.CoachingStyle
	} else if c, err := ParseCoachingStyle(string(s.CoachingStyle)); err == nil {
		s.CoachingStyle = c
	}
	return s
}

// Validate reports whether every field names a known option.
func (s Selection) Validate() error {
	if _, err := ParseModel(string(s.Model)); err != nil {
		return err
	}
	if _, err := ParseOutlook(string(s.Outlook)); err != nil {
		return err
	}
	if _, err := ParseCoachingStyle(string(s.CoachingStyle)); err != nil {
		return err
	}
	return nil
}

// ParseSelection builds a normalized, validated selection from raw display names.
// Empty fields fall back to defaults.
func ParseSelection(model, outlook, style string) (Selection, error) {
	var sel Selection
	var err error
	if strings.TrimSpace(model) != "" {
		if sel.Model, err = ParseModel(model); err != nil {
			return Selection{}, err
		}
	}
	if strings.TrimSpace(outlook) != "" {
		if sel.Outlook, err = ParseOutlook(outlook); err != nil {
			return Selection{}, err
		}
	}
	if strings.TrimSpace(style) != "" {
		if sel.CoachingStyle, err = ParseCoachingStyle(style); err != nil {
			return Selection{}, err
		}
	}
	return sel.Normalize(), nil
}
