package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"moneta/internal/core/entity"
	"moneta/internal/core/id"
)

type mockEntity struct {
	entity.Base
	Name string `db:"name" json:"name"`
	Kind string `db:"kind" json:"kind"`
	Skip string `db:"-" json:"skip"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockEntity]()

	for _, expected := range []string{
		"id", "owner_id", "version", "created_at", "updated_at", "name", "kind",
	} {
		assert.Contains(t, cols, expected)
	}
	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "skip")
}

func TestStructToMap(t *testing.T) {
	ownerID := id.New()
	e := mockEntity{
		Base: entity.NewBase(ownerID),
		Name: "Fournitures",
		Kind: "expense",
		Skip: "never stored",
	}

	m := StructToMap(e)

	assert.Equal(t, e.ID, m["id"])
	assert.Equal(t, ownerID, m["owner_id"])
	assert.Equal(t, 1, m["version"])
	assert.Equal(t, "Fournitures", m["name"])
	assert.Equal(t, "expense", m["kind"])
	_, ok := m["skip"]
	assert.False(t, ok)
}
