// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
)

// ReadFromPath reads a secret from a file path, or from stdin if path
// is "-". Leading/trailing whitespace is trimmed. Returns an error if
// the source is empty after trimming.
func ReadFromPath(path string) ([]byte, error) {
	var data []byte

	if path == "-" {
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("reading stdin: %w", err)
			}
			return nil, fmt.Errorf("stdin is empty")
		}
		data = scanner.Bytes()
	} else {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		Zero(data)
		return nil, fmt.Errorf("secret is empty")
	}

	// Copy so Zero on the raw read buffer cannot clobber the secret.
	result := make([]byte, len(trimmed))
	copy(result, trimmed)
	Zero(data)
	return result, nil
}

// Zero overwrites b with zeros. Best-effort hygiene for buffers that
// held secret material.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
