//go:build !integration

package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShellEscapeArg(t *testing.T) {
	tests := []struct {
		arg  string
		want string
	}{
		{arg: "plain", want: "plain"},
		{arg: "", want: "''"},
		{arg: "with space", want: "'with space'"},
		{arg: "it's", want: `'it'\''s'`},
		{arg: `"already quoted"`, want: `"already quoted"`},
		{arg: "$HOME", want: "'$HOME'"},
		{arg: "#comment", want: "'#comment'"},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			assert.Equal(t, tt.want, shellEscapeArg(tt.arg))
		})
	}
}

func TestShellScript(t *testing.T) {
	assert.Equal(t, "set -ex\necho a\necho b\n", shellScript([]string{"echo a", "echo b"}))
	assert.Equal(t, "/bin/bash ./cdk.out/x.sh", shellJoinArgs([]string{"/bin/bash", "./cdk.out/x.sh"}))
}

func TestIsValidPackageVersion(t *testing.T) {
	for _, v := range []string{"latest", "2.1.0", "v2.1.0", "2.1.0-rc.1"} {
		assert.True(t, isValidPackageVersion(v), v)
	}
	for _, v := range []string{"two", "2.x", ""} {
		assert.False(t, isValidPackageVersion(v), v)
	}
	assert.Equal(t, "2.1.0", npmVersion("v2.1.0"))
}
