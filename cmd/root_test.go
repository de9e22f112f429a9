package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"query", "match", "patterns", "import", "migrate", "serve", "departments"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "findings-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		cmd  *cobra.Command
		flag string
		def  string
	}{
		{queryCmd, "json", "false"},
		{importCmd, "xlsx", ""},
		{importCmd, "sheet", ""},
		{serveCmd, "port", "0"},
		{departmentsCmd, "category", ""},
	}
	for _, tt := range tests {
		t.Run(tt.cmd.Name()+"/"+tt.flag, func(t *testing.T) {
			f := tt.cmd.Flags().Lookup(tt.flag)
			require.NotNil(t, f, "%s should have --%s", tt.cmd.Name(), tt.flag)
			assert.Equal(t, tt.def, f.DefValue)
		})
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "log-level", "db"} {
		t.Run(name, func(t *testing.T) {
			f := rootCmd.PersistentFlags().Lookup(name)
			require.NotNil(t, f, "root should have --%s", name)
			assert.Empty(t, f.DefValue)
			// Inherited by every subcommand.
			assert.NotNil(t, queryCmd.InheritedFlags().Lookup(name))
		})
	}
}

func TestRootCommand_ConfigFileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	confPath := filepath.Join(dir, "findings.yaml")
	conf := "store:\n  driver: postgres\n  database_url: postgres://localhost/findings\nlog:\n  level: debug\n  format: console\n"
	require.NoError(t, os.WriteFile(confPath, []byte(conf), 0o644))
	dbPath := filepath.Join(dir, "audit.db")

	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		configFile, logLevel, storeFile = "", "", ""
		for _, name := range []string{"config", "log-level", "db"} {
			rootCmd.PersistentFlags().Lookup(name).Changed = false
		}
		zap.ReplaceGlobals(zap.NewNop())
	})

	rootCmd.SetArgs([]string{"--config", confPath, "--db", dbPath, "--log-level", "error", "migrate"})
	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, "sqlite", cfg.Store.Driver, "--db selects sqlite over the file's driver")
	assert.Equal(t, dbPath, cfg.Store.SQLitePath)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format, "unset flags keep file values")
	assert.FileExists(t, dbPath)
}

func TestRootCommand_MissingConfigFile(t *testing.T) {
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		configFile = ""
		rootCmd.PersistentFlags().Lookup("config").Changed = false
	})

	rootCmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml"), "migrate"})
	rootCmd.SilenceUsage, rootCmd.SilenceErrors = true, true
	t.Cleanup(func() { rootCmd.SilenceUsage, rootCmd.SilenceErrors = false, false })

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}
