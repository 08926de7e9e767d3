//go:build !integration

package envutil

import (
	"testing"

	"github.com/github/gh-pipelines/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func TestGetIntFromEnv(t *testing.T) {
	const envVar = "GH_PIPELINES_TEST_INT"
	log := logger.New("envutil:test")

	tests := []struct {
		name  string
		value string
		want  int
	}{
		{name: "unset uses default", value: "", want: 4},
		{name: "valid value", value: "8", want: 8},
		{name: "lower bound", value: "1", want: 1},
		{name: "upper bound", value: "16", want: 16},
		{name: "not a number", value: "many", want: 4},
		{name: "below range", value: "0", want: 4},
		{name: "above range", value: "17", want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(envVar, tt.value)
			assert.Equal(t, tt.want, GetIntFromEnv(envVar, 4, 1, 16, log))
		})
	}
}

func TestGetBoolFromEnv(t *testing.T) {
	const envVar = "GH_PIPELINES_TEST_BOOL"

	tests := []struct {
		name   string
		value  string
		want   bool
		wantOK bool
	}{
		{name: "unset", value: "", want: false, wantOK: false},
		{name: "false", value: "false", want: false, wantOK: true},
		{name: "true", value: "true", want: true, wantOK: true},
		{name: "numeric", value: "0", want: false, wantOK: true},
		{name: "padded", value: " TRUE ", want: true, wantOK: true},
		{name: "garbage", value: "sometimes", want: false, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(envVar, tt.value)
			got, ok := GetBoolFromEnv(envVar, nil)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}
