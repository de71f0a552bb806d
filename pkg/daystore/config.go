package daystore

import (
	"log"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config locates the on-disk journal.
type Config interface {
	BasePath() string
}

// LoadConfig resolves the journal base path from (in order) the DAYBOOK_PATH
// environment variable, a .daybook config file, and the built-in default.
func LoadConfig() (Config, error) {
	viper.SetDefault("path", "~/.daybook.db")
	viper.SetConfigName(".daybook") // .yaml is implicit
	viper.SetEnvPrefix("DAYBOOK")
	viper.AutomaticEnv()

	if override := os.Getenv("DAYBOOK_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}

	viper.AddConfigPath("./")
	viper.AddConfigPath("$HOME")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("error reading config file: %v", err)
			return nil, err
		}
	}

	path := viper.GetString("path")
	if expanded, err := homedir.Expand(path); err == nil {
		path = expanded
	}

	return &fileConfig{Path: path}, nil
}

type fileConfig struct {
	Path string `json:"path"`
}

func (f *fileConfig) BasePath() string {
	return f.Path
}
