package domain

import "strings"

// Level is a learner's proficiency level.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// ParseLevel maps a string to a Level, defaulting to intermediate for
// unknown or empty input.
func ParseLevel(s string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelBeginner:
		return LevelBeginner
	case LevelAdvanced:
		return LevelAdvanced
	default:
		return LevelIntermediate
	}
}

// Lower returns the level one step toward beginner.
func (l Level) Lower() Level {
	switch l {
	case LevelAdvanced:
		return LevelIntermediate
	default:
		return LevelBeginner
	}
}

// Raise returns the level one step toward advanced.
func (l Level) Raise() Level {
	switch l {
	case LevelBeginner:
		return LevelIntermediate
	default:
		return LevelAdvanced
	}
}

// Format is a learner's preferred content format.
type Format string

const (
	FormatText  Format = "text"
	FormatVideo Format = "video"
	FormatImage Format = "image"
	FormatAudio Format = "audio"
)

// ParseFormat maps a string to a Format, defaulting to text.
func ParseFormat(s string) Format {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatVideo:
		return FormatVideo
	case FormatImage:
		return FormatImage
	case FormatAudio:
		return FormatAudio
	default:
		return FormatText
	}
}

// DocTypes returns the document types that satisfy this format preference.
func (f Format) DocTypes() []DocType {
	switch f {
	case FormatVideo:
		return []DocType{DocTypeVideo}
	case FormatImage:
		return []DocType{DocTypeImage}
	case FormatAudio:
		return []DocType{DocTypeAudio}
	default:
		return []DocType{DocTypeText, DocTypePdf, DocTypeJSON}
	}
}

// Matches reports whether a document type satisfies the format preference.
func (f Format) Matches(t DocType) bool {
	for _, dt := range f.DocTypes() {
		if dt == t {
			return true
		}
	}
	return false
}

// UserProfile holds a learner's preferences and self-assessed level.
// Interests, strengths and weaknesses are ordered lists; callers cap the
// latter two at five entries.
type UserProfile struct {
	Level           Level
	PreferredFormat Format
	Interests       []string
	Strengths       []string
	Weaknesses      []string
}

// DefaultProfile returns a profile with the documented defaults.
func DefaultProfile() UserProfile {
	return UserProfile{
		Level:           LevelIntermediate,
		PreferredFormat: FormatText,
	}
}
