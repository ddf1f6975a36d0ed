package config

// DeepMerge combines override into base, returning a new map. Keys whose
// values are mappings on both sides merge recursively; every other
// conflict takes the override value wholesale, including replacing a
// mapping with a scalar or vice versa. Lists are replaced, never
// concatenated. Neither input is mutated.
func DeepMerge(base, override map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(base)+len(override))
	for key, value := range base {
		result[key] = value
	}

	for key, value := range override {
		baseMap, baseOk := result[key].(map[string]interface{})
		overrideMap, overrideOk := value.(map[string]interface{})
		if baseOk && overrideOk {
			result[key] = DeepMerge(baseMap, overrideMap)
		} else {
			result[key] = value
		}
	}

	return result
}
