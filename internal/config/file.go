package config

import (
	"reflect"
	"strings"

	"github.com/dmitrijs2005/flowcross/internal/flagx"
	"github.com/spf13/viper"
)

const envPrefix = "FLOWCROSS"

// parseFile overlays cfg with the file named by -c/-config. Keys missing from
// the file keep their current values. Read and decode errors panic, as a
// broken config file is a startup error.
func parseFile(cfg *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		panic(err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		panic(err)
	}
}

// parseEnv overlays cfg with FLOWCROSS_* variables.
func parseEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	for _, key := range settingKeys() {
		_ = v.BindEnv(key)
	}
	if err := v.Unmarshal(cfg); err != nil {
		panic(err)
	}
}

// settingKeys lists the mapstructure keys of Config.
func settingKeys() []string {
	t := reflect.TypeOf(Config{})
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		keys = append(keys, strings.Split(tag, ",")[0])
	}
	return keys
}
