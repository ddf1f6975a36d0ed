package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeepMerge_OverrideOnlyKeys(t *testing.T) {
	base := map[string]interface{}{"a": 1}
	override := map[string]interface{}{"b": 2}

	result := DeepMerge(base, override)

	assert.Equal(t, 1, result["a"])
	assert.Equal(t, 2, result["b"])
}

func TestDeepMerge_ScalarConflictTakesOverride(t *testing.T) {
	base := map[string]interface{}{"port": 5000}
	override := map[string]interface{}{"port": 8080}

	result := DeepMerge(base, override)

	assert.Equal(t, 8080, result["port"])
}

func TestDeepMerge_NestedMappingsMergeRecursively(t *testing.T) {
	base := map[string]interface{}{
		"server": map[string]interface{}{
			"port": 5000,
			"host": "0.0.0.0",
		},
	}
	override := map[string]interface{}{
		"server": map[string]interface{}{
			"port": 9000,
		},
	}

	result := DeepMerge(base, override)

	server := result["server"].(map[string]interface{})
	assert.Equal(t, 9000, server["port"])
	assert.Equal(t, "0.0.0.0", server["host"])
}

func TestDeepMerge_MappingReplacedByScalar(t *testing.T) {
	base := map[string]interface{}{
		"services": map[string]interface{}{"api": map[string]interface{}{"url": "http://a"}},
	}
	override := map[string]interface{}{
		"services": "disabled",
	}

	result := DeepMerge(base, override)

	assert.Equal(t, "disabled", result["services"])
}

func TestDeepMerge_ScalarReplacedByMapping(t *testing.T) {
	base := map[string]interface{}{"logging": "info"}
	override := map[string]interface{}{
		"logging": map[string]interface{}{"level": "debug"},
	}

	result := DeepMerge(base, override)

	logging := result["logging"].(map[string]interface{})
	assert.Equal(t, "debug", logging["level"])
}

func TestDeepMerge_ListsReplacedNotConcatenated(t *testing.T) {
	base := map[string]interface{}{"tags": []interface{}{"a", "b"}}
	override := map[string]interface{}{"tags": []interface{}{"c"}}

	result := DeepMerge(base, override)

	assert.Equal(t, []interface{}{"c"}, result["tags"])
}

func TestDeepMerge_EmptyOverrideReturnsBaseUnchanged(t *testing.T) {
	base := map[string]interface{}{
		"server":   map[string]interface{}{"port": 5000},
		"services": map[string]interface{}{"api": map[string]interface{}{"url": "http://a"}},
	}

	result := DeepMerge(base, map[string]interface{}{})

	assert.Equal(t, base, result)
}

func TestDeepMerge_DoesNotMutateInputs(t *testing.T) {
	base := map[string]interface{}{
		"server": map[string]interface{}{"port": 5000},
	}
	override := map[string]interface{}{
		"server": map[string]interface{}{"port": 9000},
	}

	_ = DeepMerge(base, override)

	assert.Equal(t, 5000, base["server"].(map[string]interface{})["port"])
	assert.Equal(t, 9000, override["server"].(map[string]interface{})["port"])
}
