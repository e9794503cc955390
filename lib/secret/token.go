// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
)

// botPrefix is the Authorization scheme Discord expects in front of a
// bot token. Operators frequently store the token with it.
var botPrefix = []byte("Bot ")

// ReadToken loads a bot token. When path is non-empty it is read from
// that file, or from stdin when path is "-". Otherwise the token comes
// from the environment variable envVariable. Surrounding whitespace and
// a leading "Bot " are stripped. The returned buffer holds the bare
// token and must be closed by the caller.
func ReadToken(path, envVariable string) (*Buffer, error) {
	var data []byte
	var source string

	switch {
	case path == "-":
		source = "stdin"
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("reading stdin: %w", err)
			}
			return nil, fmt.Errorf("stdin is empty")
		}
		data = bytes.Clone(scanner.Bytes())
	case path != "":
		source = path
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading token file: %w", err)
		}
	case envVariable != "":
		source = "$" + envVariable
		data = []byte(os.Getenv(envVariable))
		if len(data) == 0 {
			return nil, fmt.Errorf("environment variable %s is not set", envVariable)
		}
	default:
		return nil, fmt.Errorf("no token source configured (set a token file or environment variable)")
	}

	token := bytes.TrimSpace(data)
	token = bytes.TrimPrefix(token, botPrefix)
	token = bytes.TrimSpace(token)
	if len(token) == 0 {
		Zero(data)
		return nil, fmt.Errorf("token from %s is empty", source)
	}

	buffer, err := NewFromBytes(token)
	Zero(data)
	if err != nil {
		return nil, err
	}
	return buffer, nil
}
