// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"fmt"
	"strings"
	"unicode"
)

const separator = ": "

// Reading is one decoded "<Field>: <value>" line.
type Reading struct {
	Field Field  `json:"field"`
	Value string `json:"value"`
}

// UnrecognizedLineError reports a line with no known field prefix.
type UnrecognizedLineError struct {
	Line string
}

func (e *UnrecognizedLineError) Error() string {
	return fmt.Sprintf("unrecognized line: %q", e.Line)
}

// Decode parses one raw protocol line. The value is passed through as text;
// numeric interpretation happens later in Series and Route.
func Decode(line string) (Reading, error) {
	line = strings.TrimRightFunc(line, unicode.IsSpace)

	name, value, found := strings.Cut(line, separator)
	if !found || value == "" {
		return Reading{}, &UnrecognizedLineError{Line: line}
	}

	field, ok := ParseField(name)
	if !ok {
		return Reading{}, &UnrecognizedLineError{Line: line}
	}
	return Reading{Field: field, Value: value}, nil
}
