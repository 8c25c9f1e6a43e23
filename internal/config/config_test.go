package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompileOptions_ValidateRejectsEmptyWorkspaceRoot(t *testing.T) {
	opts := CompileOptions{WorkspaceRoots: []string{"/workspace", ""}}
	assert.Error(t, opts.Validate())
}

func TestCompileOptions_ValidateAcceptsWellFormedRoots(t *testing.T) {
	opts := CompileOptions{WorkspaceRoots: []string{"/workspace"}, AddSourceMappings: true}
	assert.NoError(t, opts.Validate())
}

func TestServerOptions_ValidateRejectsNegativeDebounce(t *testing.T) {
	opts := ServerOptions{DebounceMs: -1}
	assert.Error(t, opts.Validate())
}

func TestServerOptions_ValidateAcceptsZeroDebounceAsDefault(t *testing.T) {
	opts := ServerOptions{}
	assert.NoError(t, opts.Validate())
}
