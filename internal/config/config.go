package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"centival/internal"
	"centival/internal/errors"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix         = "CENTIVAL"
	DefaultConfigFile = "centival.yaml"
	DefaultFigureName = "correlation_plots.png"
)

// Deployment profiles. Each one is a fixed layout of input and output paths
// under the project root.
const (
	ProfileLocal = "local"
	ProfileDrive = "drive"
	ProfileFlat  = "flat"
)

// Config represents the complete application configuration
type Config struct {
	Profile         string `mapstructure:"profile" yaml:"profile"`
	ProjectRoot     string `mapstructure:"project_root" yaml:"project_root"`
	ComputedPath    string `mapstructure:"computed_path" yaml:"computed_path,omitempty"`
	ReferencePath   string `mapstructure:"reference_path" yaml:"reference_path,omitempty"`
	OutputDir       string `mapstructure:"output_dir" yaml:"output_dir,omitempty"`
	FigurePath      string `mapstructure:"figure_path" yaml:"figure_path,omitempty"`
	QCDir           string `mapstructure:"qc_dir" yaml:"qc_dir,omitempty"`
	LogLevel        string `mapstructure:"log_level" yaml:"log_level"`
	DuplicatePolicy string `mapstructure:"duplicate_policy" yaml:"duplicate_policy"`
	FigureWidth     int    `mapstructure:"figure_width" yaml:"figure_width"`
	FigureHeight    int    `mapstructure:"figure_height" yaml:"figure_height"`
}

// Paths is the resolved file layout of one run
type Paths struct {
	ComputedPath  string
	ReferencePath string
	OutputDir     string
	FigurePath    string
	QCDir         string
}

// LoadOptions controls where configuration comes from
type LoadOptions struct {
	ConfigFile string // explicit YAML file; empty tries ./centival.yaml
	EnvFile    string // dotenv file; empty means .env
	// Flags maps config keys to command-line flags. Only flags the user set override.
	Flags map[string]*pflag.Flag
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Profile:         ProfileLocal,
		ProjectRoot:     ".",
		LogLevel:        "info",
		DuplicatePolicy: "keep_first",
		FigureWidth:     700,
		FigureHeight:    560,
	}
}

// Load reads configuration. Precedence: flags > env > config file > defaults.
func Load(opts LoadOptions) (*Config, error) {
	if err := LoadDotEnv(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("profile", def.Profile)
	v.SetDefault("project_root", def.ProjectRoot)
	v.SetDefault("computed_path", "")
	v.SetDefault("reference_path", "")
	v.SetDefault("output_dir", "")
	v.SetDefault("figure_path", "")
	v.SetDefault("qc_dir", "")
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("duplicate_policy", def.DuplicatePolicy)
	v.SetDefault("figure_width", def.FigureWidth)
	v.SetDefault("figure_height", def.FigureHeight)

	cfgFile := opts.ConfigFile
	if cfgFile == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			cfgFile = DefaultConfigFile
		}
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid,
				fmt.Errorf("read config %s: %w", cfgFile, err))
		}
		internal.DefaultLogger.Debug("using config file %s", cfgFile)
	}

	for key, flag := range opts.Flags {
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, errors.Wrapf(err, "bind flag %s", flag.Name)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("unmarshal config: %w", err))
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadDotEnv loads environment variables from a dotenv file. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("load %s: %w", path, err))
	}
	return nil
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.Profile {
	case ProfileLocal, ProfileDrive, ProfileFlat:
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown profile %q (use %s, %s or %s)",
			c.Profile, ProfileLocal, ProfileDrive, ProfileFlat))
	}
	if _, ok := internal.ParseLogLevel(c.LogLevel); !ok {
		return errors.ConfigInvalid(fmt.Sprintf("unknown log level %q", c.LogLevel))
	}
	switch strings.TrimSpace(c.DuplicatePolicy) {
	case "", "keep_first", "error":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown duplicate policy %q", c.DuplicatePolicy))
	}
	if c.FigureWidth < 0 || c.FigureHeight < 0 {
		return errors.ConfigInvalid("figure dimensions cannot be negative")
	}
	return nil
}

// Resolve lays out the profile under the project root, then applies explicit path settings
func (c *Config) Resolve() Paths {
	root := c.ProjectRoot
	if root == "" {
		root = "."
	}

	var p Paths
	switch c.Profile {
	case ProfileDrive:
		p = Paths{
			ComputedPath:  filepath.Join(root, "csv", "all_subjects_results.csv"),
			ReferencePath: filepath.Join(root, "csv", "Centiloid_Project_Values.csv"),
			OutputDir:     filepath.Join(root, "results"),
			QCDir:         filepath.Join(root, "results", "QC"),
		}
	case ProfileFlat:
		p = Paths{
			ComputedPath:  filepath.Join(root, "all_subjects_results.csv"),
			ReferencePath: filepath.Join(root, "Centiloid_Project_Values.csv"),
			OutputDir:     root,
			QCDir:         filepath.Join(root, "QC"),
		}
	default:
		p = Paths{
			ComputedPath:  filepath.Join(root, "results", "tables", "all_subjects_results.csv"),
			ReferencePath: filepath.Join(root, "data", "references", "centiloid_values.csv"),
			OutputDir:     filepath.Join(root, "results", "reports"),
			QCDir:         filepath.Join(root, "results", "QC"),
		}
	}

	if c.ComputedPath != "" {
		p.ComputedPath = c.ComputedPath
	}
	if c.ReferencePath != "" {
		p.ReferencePath = c.ReferencePath
	}
	if c.OutputDir != "" {
		p.OutputDir = c.OutputDir
	}
	if c.QCDir != "" {
		p.QCDir = c.QCDir
	}
	p.FigurePath = filepath.Join(p.OutputDir, DefaultFigureName)
	if c.FigurePath != "" {
		p.FigurePath = c.FigurePath
	}
	return p
}

// Save writes the configuration as YAML to path
func Save(c *Config, path string) error {
	if path == "" {
		path = DefaultConfigFile
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.OutputWrite(path, err)
		}
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal yaml")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.OutputWrite(path, err)
	}
	return nil
}
