package embedding

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// UserProfile carries the profile fields the canonical projection reads
type UserProfile struct {
	ID         uuid.UUID
	Attributes map[string]any
	Biography  string
	Meta       map[string]any
}

// PostContent carries a post's text together with its owner's profile
type PostContent struct {
	ID      uuid.UUID
	Content string
	Owner   UserProfile
}

const projectionDelimiter = " | "

// userProjectionFields is the fixed priority order of profile fields. The
// order matters: the projected string is hashed for staleness detection, so
// it must be byte-identical for identical field values.
var userProjectionFields = []struct {
	label  string
	render func(UserProfile) string
}{
	{"ATTRIBUTES", func(p UserProfile) string { return marshalFields(p.Attributes) }},
	{"BIOGRAPHY", func(p UserProfile) string { return strings.TrimSpace(p.Biography) }},
	{"META", func(p UserProfile) string { return marshalFields(p.Meta) }},
}

// ProjectUser maps a user profile to its canonical embedding text. Each
// non-empty field renders as "<LABEL>: <value>", joined by " | ". A profile
// with no usable fields falls back to a stable id-based string.
func ProjectUser(p UserProfile) string {
	parts := make([]string, 0, len(userProjectionFields))
	for _, field := range userProjectionFields {
		if value := field.render(p); value != "" {
			parts = append(parts, field.label+": "+value)
		}
	}

	if len(parts) == 0 {
		return "USER: " + p.ID.String()
	}

	return strings.Join(parts, projectionDelimiter)
}

// ProjectPost maps a post to its canonical embedding text: the post content
// followed by the owner's projection.
func ProjectPost(p PostContent) string {
	owner := ProjectUser(p.Owner)
	content := strings.TrimSpace(p.Content)
	if content == "" {
		return owner
	}
	return content + projectionDelimiter + owner
}

// UserEntity wraps a profile as a generator work unit
func UserEntity(p UserProfile) Entity {
	return Entity{Kind: KindUser, ID: p.ID, Text: ProjectUser(p)}
}

// PostEntity wraps a post as a generator work unit
func PostEntity(p PostContent) Entity {
	return Entity{Kind: KindPost, ID: p.ID, Text: ProjectPost(p)}
}

// marshalFields serializes a field map compactly. encoding/json marshals map
// keys in sorted order, which supplies the determinism the content hash needs.
func marshalFields(fields map[string]any) string {
	if len(fields) == 0 {
		return ""
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return ""
	}

	return string(data)
}
