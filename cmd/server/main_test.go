package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	root := rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "factoryplan dev\n", out.String())
}

func TestInvalidLogLevel(t *testing.T) {
	root := rootCmd()
	root.SetArgs([]string{"--log-level", "loud", "version"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --log-level")
}

func TestServeRejectsInvalidConfig(t *testing.T) {
	t.Setenv("FACTORYPLAN_ENV", "staging")
	root := rootCmd()
	root.SetArgs([]string{"serve"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid environment")
}
