package common

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	commonconfig "github.com/tracetool/tracetool/internal/common/config"
	"github.com/tracetool/tracetool/internal/common/logging"
	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
)

const baseConfigFileName = "config"

// RFC3339Millis
const logTimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// LoadConfig reads config.yaml from defaultPath if it exists, merges each of overrideConfigs on top of it,
// applies TRACETOOL_ prefixed environment variables and unmarshals the result into config.
// v may carry defaults and flag bindings; if it is nil a fresh viper instance is used.
func LoadConfig(v *viper.Viper, config interface{}, defaultPath string, overrideConfigs []string) error {
	if v == nil {
		v = viper.New()
	}
	v.SetConfigName(baseConfigFileName)
	v.AddConfigPath(defaultPath)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return configError(defaultPath, err)
		}
	} else {
		log.Debugf("Read base config from %s", v.ConfigFileUsed())
	}

	for _, overrideConfig := range overrideConfigs {
		v.SetConfigFile(overrideConfig)
		if err := v.MergeInConfig(); err != nil {
			return configError(overrideConfig, err)
		}
		log.Debugf("Read config from %s", v.ConfigFileUsed())
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("TRACETOOL")
	v.AutomaticEnv()

	if err := v.Unmarshal(config, commonconfig.CustomHooks...); err != nil {
		// Errors returned by the decode hooks only survive as text in the mapstructure error.
		return configError("", err)
	}
	return commonconfig.Validate(config)
}

// configError reports a config file that can't be read or a value that can't be decoded as invalid input.
func configError(source string, err error) error {
	return errors.WithStack(&tracetoolerrors.ErrInput{Name: "config", Value: source, Message: err.Error()})
}

// ConfigureCommandLineLogging sets up logrus for interactive use: plain messages on stderr, leaving stdout for reports.
func ConfigureCommandLineLogging() {
	commandLineFormatter := new(logging.CommandLineFormatter)
	log.SetFormatter(commandLineFormatter)
	log.SetOutput(os.Stderr)
}

// ConfigureVerboseLogging switches to timestamped, structured output at debug level on stderr.
func ConfigureVerboseLogging() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: logTimestampFormat})
	log.SetLevel(log.DebugLevel)
	log.SetOutput(os.Stderr)
}
