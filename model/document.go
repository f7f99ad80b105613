package model

import "encoding/json"

// The dashboard document types below capture the fields the composition
// engine interprets and carry everything else through untouched in Extra.
// The platform's schema varies by version and clause type, so a write-back
// must not drop fields the engine never looked at.

// captureExtra decodes data into a generic map and removes the known keys,
// returning whatever remains. Returns nil when nothing remains.
func captureExtra(data []byte, knownKeys []string) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for _, k := range knownKeys {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}

// mergeExtra overlays the passthrough fields onto the marshalled struct.
// Known fields win on key collision.
func mergeExtra(structJSON []byte, extra map[string]any) ([]byte, error) {
	if len(extra) == 0 {
		return structJSON, nil
	}
	var m map[string]any
	if err := json.Unmarshal(structJSON, &m); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, known := m[k]; !known {
			m[k] = v
		}
	}
	return json.Marshal(m)
}

// Decode re-marshals a parsed JSON document into dst. The gateway returns
// untyped documents; this is how packages lift them into typed records.
func Decode(doc any, dst any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
