package mapsafe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atelier-vision/zoocard/internal/mapsafe"
)

func TestGet(t *testing.T) {
	m := map[string]any{
		"int":       3,
		"float":     0.9,
		"int-float": float64(7), // YAML numbers often decode as float64
		"string":    "AP",
		"bool":      true,
	}

	assert.Equal(t, 3, mapsafe.Get(m, "int", 0))
	assert.Equal(t, 7, mapsafe.Get(m, "int-float", 0))
	assert.Equal(t, 0.9, mapsafe.Get(m, "float", 0.0))
	assert.Equal(t, 3.0, mapsafe.Get(m, "int", 0.0))
	assert.Equal(t, "AP", mapsafe.Get(m, "string", ""))
	assert.True(t, mapsafe.Get(m, "bool", false))

	assert.Equal(t, 42, mapsafe.Get(m, "missing", 42))
	assert.Equal(t, "x", mapsafe.Get(m, "int", "x"))
	assert.Equal(t, 1, mapsafe.Get[int](nil, "any", 1))
}

func TestStrings(t *testing.T) {
	m := map[string]any{
		"typed": []string{"AP", "AR"},
		"yaml":  []any{"AP", "AR"},
		"mixed": []any{"AP", 1},
		"other": "AP",
	}

	assert.Equal(t, []string{"AP", "AR"}, mapsafe.Strings(m, "typed", nil))
	assert.Equal(t, []string{"AP", "AR"}, mapsafe.Strings(m, "yaml", nil))
	assert.Equal(t, []string{"d"}, mapsafe.Strings(m, "mixed", []string{"d"}))
	assert.Equal(t, []string{"d"}, mapsafe.Strings(m, "other", []string{"d"}))
	assert.Nil(t, mapsafe.Strings(m, "missing", nil))
}
