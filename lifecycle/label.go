// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import (
	"fmt"
	"io"
)

const labelAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// labelRejectAbove is the largest multiple of len(labelAlphabet) that
// fits in a byte. Bytes at or above it are discarded so every character
// is equally likely.
const labelRejectAbove = 256 - 256%len(labelAlphabet)

// generateLabel returns prefix followed by length characters drawn
// uniformly from [A-Z0-9]. Labels are not checked for collisions; with
// the default six characters there are 36^6 (about 2.2 billion) suffixes.
func generateLabel(random io.Reader, prefix string, length int) (string, error) {
	label := make([]byte, 0, len(prefix)+length)
	label = append(label, prefix...)

	buffer := make([]byte, length+length/2)
	for len(label) < len(prefix)+length {
		if _, err := io.ReadFull(random, buffer); err != nil {
			return "", fmt.Errorf("reading random bytes: %w", err)
		}
		for _, b := range buffer {
			if int(b) >= labelRejectAbove {
				continue
			}
			label = append(label, labelAlphabet[int(b)%len(labelAlphabet)])
			if len(label) == len(prefix)+length {
				break
			}
		}
	}
	return string(label), nil
}
