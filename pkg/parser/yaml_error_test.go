//go:build !integration

package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFromGoccyFormat(t *testing.T) {
	tests := []struct {
		name    string
		err     string
		line    int
		column  int
		message string
	}{
		{name: "positioned", err: "[3:5] mapping value is not allowed in this context", line: 3, column: 5, message: "mapping value is not allowed in this context"},
		{name: "with source excerpt", err: "[2:1] unexpected key\n>  2 | foo", line: 2, column: 1, message: "unexpected key"},
		{name: "no position", err: "something broke", message: "something broke"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, column, message := ExtractYAMLError(errors.New(tt.err))
			assert.Equal(t, tt.line, line)
			assert.Equal(t, tt.column, column)
			assert.Equal(t, tt.message, message)
		})
	}
}

func TestContextLines(t *testing.T) {
	content := []byte("a\nb\nc\nd\n")
	assert.Equal(t, []string{"a", "b"}, contextLines(content, 1))
	assert.Equal(t, []string{"b", "c", "d"}, contextLines(content, 3))
}
