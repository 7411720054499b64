package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/goliatone/go-postpress"
	"github.com/goliatone/go-postpress/internal/di"
	"github.com/goliatone/go-postpress/internal/logging"
	"github.com/goliatone/go-postpress/pkg/interfaces"
)

// EnvPrefix namespaces the environment variables read by LoadConfig, e.g.
// POSTPRESS_SITE_URL or POSTPRESS_NOTIFY_REDIS_ADDR.
const EnvPrefix = "POSTPRESS"

// Options captures configuration for CLI bootstraps.
type Options struct {
	ConfigFile     string
	EnvFile        string
	LoggerProvider interfaces.LoggerProvider
	Filesystem     afero.Fs
}

// Module wraps the postpress module and the CLI logger.
type Module struct {
	Module *postpress.Module
	Logger interfaces.Logger
}

// LoadConfig resolves the runtime configuration. Values come, in increasing
// precedence, from the built in defaults, postpress.{yml,yaml,json,toml} (or
// ConfigFile), the env file and the process environment.
func LoadConfig(opts Options) (postpress.Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return postpress.Config{}, err
	}

	v := viper.New()
	defaults := postpress.DefaultConfig()
	registerDefaults(v, "", reflect.ValueOf(defaults))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := strings.TrimSpace(opts.ConfigFile); file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("postpress")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return postpress.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := defaults
	if err := v.Unmarshal(&cfg); err != nil {
		return postpress.Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return postpress.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadEnvFile loads name into the process environment without overriding
// variables that are already set. A missing default .env is not an error.
func loadEnvFile(name string) error {
	explicit := strings.TrimSpace(name) != ""
	if !explicit {
		name = ".env"
	}
	if err := godotenv.Load(name); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", name, err)
	}
	return nil
}

// registerDefaults walks the mapstructure tags of value so every key is
// known to viper, which AutomaticEnv needs to resolve it during Unmarshal.
func registerDefaults(v *viper.Viper, prefix string, value reflect.Value) {
	typ := value.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		key := field.Tag.Get("mapstructure")
		if key == "" || key == "-" {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}
		fieldValue := value.Field(i)
		if fieldValue.Kind() == reflect.Struct {
			registerDefaults(v, key, fieldValue)
			continue
		}
		v.SetDefault(key, fieldValue.Interface())
	}
}

// BuildModule constructs a module from cfg.
func BuildModule(cfg postpress.Config, opts Options) (*Module, error) {
	diOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}
	if opts.Filesystem != nil {
		diOpts = append(diOpts, di.WithFilesystem(opts.Filesystem))
	}

	module, err := postpress.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise postpress module: %w", err)
	}

	return &Module{
		Module: module,
		Logger: logging.ModuleLogger(module.Container().LoggerProvider(), "postpress.cli"),
	}, nil
}

// TitleFromFilename derives a post title from a markdown file name:
// "my-first_post.md" becomes "My First Post".
func TitleFromFilename(name string) string {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	stem = strings.NewReplacer("-", " ", "_", " ").Replace(stem)
	return cases.Title(language.English).String(strings.Join(strings.Fields(stem), " "))
}
