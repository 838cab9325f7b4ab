package config

import (
	"os"
	"path/filepath"
	"testing"

	"centival/internal/errors"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(LoadOptions{EnvFile: noEnvFile(t)})
	require.NoError(t, err)

	assert.Equal(t, ProfileLocal, c.Profile)
	assert.Equal(t, "keep_first", c.DuplicatePolicy)
	assert.Equal(t, 700, c.FigureWidth)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "centival.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("profile: drive\nproject_root: /data/pet\nlog_level: debug\nduplicate_policy: error\n"), 0o644))

	t.Setenv("CENTIVAL_LOG_LEVEL", "warn")

	flags := pflag.NewFlagSet("validate", pflag.ContinueOnError)
	flags.String("profile", "", "")
	flags.String("figure", "", "")
	require.NoError(t, flags.Parse([]string{"--figure", "/tmp/fig.png"}))

	c, err := Load(LoadOptions{
		ConfigFile: cfgFile,
		EnvFile:    noEnvFile(t),
		Flags: map[string]*pflag.Flag{
			"profile":     flags.Lookup("profile"),
			"figure_path": flags.Lookup("figure"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, ProfileDrive, c.Profile, "unset flag must not override the file")
	assert.Equal(t, "warn", c.LogLevel, "env overrides file")
	assert.Equal(t, "error", c.DuplicatePolicy)
	assert.Equal(t, "/tmp/fig.png", c.FigurePath)
}

func TestLoadDotEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CENTIVAL_PROFILE=flat\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("CENTIVAL_PROFILE") })

	c, err := Load(LoadOptions{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, ProfileFlat, c.Profile)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml"), EnvFile: noEnvFile(t)})
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestValidate(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	bad := []func(*Config){
		func(c *Config) { c.Profile = "colab" },
		func(c *Config) { c.LogLevel = "chatty" },
		func(c *Config) { c.DuplicatePolicy = "keep_last" },
		func(c *Config) { c.FigureWidth = -1 },
	}
	for _, mutate := range bad {
		c := Default()
		mutate(c)
		err := c.Validate()
		require.Error(t, err)
		assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	}
}

func TestResolveProfiles(t *testing.T) {
	c := Default()
	c.ProjectRoot = "/proj"

	p := c.Resolve()
	assert.Equal(t, filepath.Join("/proj", "results", "tables", "all_subjects_results.csv"), p.ComputedPath)
	assert.Equal(t, filepath.Join("/proj", "data", "references", "centiloid_values.csv"), p.ReferencePath)
	assert.Equal(t, filepath.Join("/proj", "results", "reports", "correlation_plots.png"), p.FigurePath)

	c.Profile = ProfileDrive
	p = c.Resolve()
	assert.Equal(t, filepath.Join("/proj", "csv", "Centiloid_Project_Values.csv"), p.ReferencePath)
	assert.Equal(t, filepath.Join("/proj", "results"), p.OutputDir)

	c.Profile = ProfileFlat
	c.ProjectRoot = ""
	p = c.Resolve()
	assert.Equal(t, "all_subjects_results.csv", p.ComputedPath)
	assert.Equal(t, ".", p.OutputDir)
}

func TestResolveExplicitPathsWin(t *testing.T) {
	c := Default()
	c.ComputedPath = "mine.csv"
	c.OutputDir = "out"
	p := c.Resolve()

	assert.Equal(t, "mine.csv", p.ComputedPath)
	assert.Equal(t, filepath.Join("out", "correlation_plots.png"), p.FigurePath)

	c.FigurePath = "fig.png"
	assert.Equal(t, "fig.png", c.Resolve().FigurePath)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "centival.yaml")
	c := Default()
	c.Profile = ProfileDrive
	c.ProjectRoot = "/content/drive/MyDrive/PET-NeuroProject"
	require.NoError(t, Save(c, path))

	loaded, err := Load(LoadOptions{ConfigFile: path, EnvFile: noEnvFile(t)})
	require.NoError(t, err)
	assert.Equal(t, c.Profile, loaded.Profile)
	assert.Equal(t, c.ProjectRoot, loaded.ProjectRoot)
}
