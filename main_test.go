package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "diagnose", "classes", "explain", "history", "version"}, names)

	require.NotNil(t, root.PersistentFlags().Lookup("config"))
	require.NotNil(t, root.PersistentFlags().Lookup("verbose"))
	assert.True(t, root.CompletionOptions.DisableDefaultCmd)
}

func TestDiagnoseRequiresImage(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"diagnose"})
	root.SilenceErrors = true
	assert.Error(t, root.Execute())
}
