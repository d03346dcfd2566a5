package types

import "fmt"

// ContentType represents the kind of title being played
type ContentType string

const (
	ContentMovie ContentType = "movie"
	ContentTV    ContentType = "tv"
)

// ParseContentType parses a content type string
func ParseContentType(s string) (ContentType, error) {
	switch s {
	case "movie", "movies":
		return ContentMovie, nil
	case "tv", "show", "shows":
		return ContentTV, nil
	default:
		return "", fmt.Errorf("invalid content type: %s", s)
	}
}

// String returns the string representation of ContentType
func (t ContentType) String() string {
	return string(t)
}
