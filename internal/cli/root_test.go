package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "opsledger", cmd.Use)
	assert.Contains(t, cmd.Long, "planned quantities")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"import"}, {"job", "create"}, {"start"}, {"split"}, {"validate"},
		{"set-qty"}, {"confirm"}, {"complete"}, {"update"}, {"progress"},
		{"summary"}, {"list"}, {"delete"}, {"machine", "add"}, {"machine", "list"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"config", "db"} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "", flag.DefValue)
	}
}

func TestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	tests := []struct {
		path []string
		flag string
		def  string
	}{
		{[]string{"complete"}, "undo", "false"},
		{[]string{"delete"}, "cascade", "false"},
		{[]string{"summary"}, "item", ""},
		{[]string{"job", "create"}, "kind", "print"},
		{[]string{"update"}, "pallet", ""},
		{[]string{"list"}, "sources", "false"},
	}
	for _, tt := range tests {
		sub, _, err := cmd.Find(tt.path)
		require.NoError(t, err)
		flag := sub.Flags().Lookup(tt.flag)
		require.NotNil(t, flag, "%v --%s", tt.path, tt.flag)
		assert.Equal(t, tt.def, flag.DefValue)
	}
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.False(t, isValidFormat("yaml"))
}
