package embedding

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestProjectUser(t *testing.T) {
	t.Run("Attributes only", func(t *testing.T) {
		profile := UserProfile{
			ID:         uuid.New(),
			Attributes: map[string]any{"city": "NYC"},
		}

		assert.Equal(t, `ATTRIBUTES: {"city":"NYC"}`, ProjectUser(profile))
	})

	t.Run("Fields render in fixed priority order", func(t *testing.T) {
		profile := UserProfile{
			ID:         uuid.New(),
			Attributes: map[string]any{"city": "NYC"},
			Biography:  "Software engineer",
			Meta:       map[string]any{"lang": "en"},
		}

		expected := `ATTRIBUTES: {"city":"NYC"} | BIOGRAPHY: Software engineer | META: {"lang":"en"}`
		assert.Equal(t, expected, ProjectUser(profile))
	})

	t.Run("Empty fields are omitted", func(t *testing.T) {
		profile := UserProfile{
			ID:        uuid.New(),
			Biography: "Just a bio",
		}

		assert.Equal(t, "BIOGRAPHY: Just a bio", ProjectUser(profile))
	})

	t.Run("Empty profile falls back to id", func(t *testing.T) {
		id := uuid.New()
		profile := UserProfile{ID: id}

		assert.Equal(t, "USER: "+id.String(), ProjectUser(profile))
	})

	t.Run("Deterministic across calls", func(t *testing.T) {
		profile := UserProfile{
			ID:         uuid.New(),
			Attributes: map[string]any{"b": 2, "a": 1, "c": 3},
			Meta:       map[string]any{"z": "last", "a": "first"},
		}

		first := ProjectUser(profile)
		second := ProjectUser(profile)

		assert.Equal(t, first, second)
		// encoding/json sorts map keys, so key order in the struct is irrelevant
		assert.Contains(t, first, `{"a":1,"b":2,"c":3}`)
	})
}

func TestProjectPost(t *testing.T) {
	owner := UserProfile{
		ID:         uuid.New(),
		Attributes: map[string]any{"city": "NYC"},
	}

	t.Run("Content plus owner projection", func(t *testing.T) {
		post := PostContent{
			ID:      uuid.New(),
			Content: "Hello world",
			Owner:   owner,
		}

		assert.Equal(t, `Hello world | ATTRIBUTES: {"city":"NYC"}`, ProjectPost(post))
	})

	t.Run("Empty content falls back to owner projection", func(t *testing.T) {
		post := PostContent{
			ID:    uuid.New(),
			Owner: owner,
		}

		assert.Equal(t, `ATTRIBUTES: {"city":"NYC"}`, ProjectPost(post))
	})
}

func TestContentHash(t *testing.T) {
	t.Run("Stable for identical input", func(t *testing.T) {
		assert.Equal(t, ContentHash("text", "model-a"), ContentHash("text", "model-a"))
	})

	t.Run("Changes with text", func(t *testing.T) {
		assert.NotEqual(t, ContentHash("text", "model-a"), ContentHash("other", "model-a"))
	})

	t.Run("Changes with model version", func(t *testing.T) {
		// switching embedding models must force regeneration
		assert.NotEqual(t, ContentHash("text", "model-a"), ContentHash("text", "model-b"))
	})
}
