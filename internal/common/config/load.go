package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "SWEEP"
	DotEnvFile     = ".env"
	HomeConfigName = ".sweepctl.yaml"
)

// FlagBindings maps config keys, e.g., collect.allowPartial, to command-line flags that override them.
type FlagBindings map[string]*pflag.Flag

// LoadConfig populates config from, in increasing order of precedence: the embedded defaults,
// each of userSpecifiedConfigs in turn, SWEEP_-prefixed environment variables, where
// nested keys are joined with underscores, e.g., SWEEP_RESOURCES_MEMORY, and flags that were
// explicitly set on the command line.
// If no config files are given, ~/.sweepctl.yaml is used when present.
// If a .env file exists in the working directory, its variables are loaded first without
// overriding variables that are already set.
func LoadConfig(config interface{}, defaults []byte, userSpecifiedConfigs []string, flags FlagBindings) error {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return errors.Wrap(err, "error reading default config")
	}

	if len(userSpecifiedConfigs) == 0 {
		if path, ok := homeConfigFile(); ok {
			userSpecifiedConfigs = []string{path}
		}
	}
	for _, path := range userSpecifiedConfigs {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return errors.Wrapf(err, "error reading config from %s", path)
		}
		log.Debugf("Merged config from %s", path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range flags {
		if flag == nil {
			return errors.Errorf("no flag bound to %s", key)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return errors.WithStack(err)
		}
	}

	if err := v.Unmarshal(config, CustomHooks...); err != nil {
		return errors.Wrap(err, "error unmarshalling config")
	}
	return nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.WithStack(err)
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "error loading %s", path)
	}
	return nil
}

func homeConfigFile() (string, bool) {
	home, err := homedir.Dir()
	if err != nil {
		log.WithError(err).Debug("Could not determine home directory")
		return "", false
	}
	path := filepath.Join(home, HomeConfigName)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}
