// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

package action

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// Manifest is the on-disk description of the actions a deployment
// exposes. Manifests are authored as JSONC (JSON extended with //
// line comments, /* block comments */, and trailing commas) so schema
// files can carry commentary for operators.
type Manifest struct {
	Actions []Definition `json:"actions"`
}

// ParseManifest strips JSONC comments and trailing commas from data,
// then unmarshals the result.
func ParseManifest(data []byte) (*Manifest, error) {
	stripped := jsonc.ToJSON(data)

	var manifest Manifest
	if err := json.Unmarshal(stripped, &manifest); err != nil {
		return nil, fmt.Errorf("parsing action manifest: %w", err)
	}

	for i, def := range manifest.Actions {
		if def.Name == "" {
			return nil, fmt.Errorf("action manifest: entry %d has no name", i)
		}
	}
	return &manifest, nil
}

// ReadManifest reads a JSONC manifest file from disk and parses it.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	manifest, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return manifest, nil
}
