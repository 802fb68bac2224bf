package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/conf"
	"gopkg.in/yaml.v2"
)

// configFile is consulted when present; its values override flag and
// environment settings, mirroring a deployment-managed configuration.
const configFile = "config.yml"

type configuration struct {
	conf.Version
	Debug bool `conf:"default:false" yaml:"debug"`
	Web   struct {
		APIHost         string        `conf:"default:0.0.0.0:3000" yaml:"apiHost"`
		ReadTimeout     time.Duration `conf:"default:5s" yaml:"readTimeout"`
		WriteTimeout    time.Duration `conf:"default:10s" yaml:"writeTimeout"`
		ShutdownTimeout time.Duration `conf:"default:20s" yaml:"shutdownTimeout"`
	} `yaml:"web"`
	DB struct {
		Filename string `conf:"default:recipes.db" yaml:"filename"`
	} `yaml:"db"`
	Uploads struct {
		Path string `conf:"default:uploads" yaml:"path"`
	} `yaml:"uploads"`
	Sessions struct {
		Secret   string        `conf:"default:change-me,noprint" yaml:"secret"`
		Duration time.Duration `conf:"default:72h" yaml:"duration"`
	} `yaml:"sessions"`
}

// loadConfiguration parses defaults, environment variables and command line
// flags, then overlays the optional YAML configuration file.
func loadConfiguration() (cfg configuration, err error) {
	cfg.Version.SVN = "1.0.0"
	cfg.Version.Desc = "Sapore recipe sharing API"

	if err = conf.Parse(os.Args[1:], "SAPORE", &cfg); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			usage, usageErr := conf.Usage("SAPORE", &cfg)
			if usageErr != nil {
				return cfg, fmt.Errorf("generating config usage: %w", usageErr)
			}
			fmt.Println(usage)
			return cfg, conf.ErrHelpWanted
		}
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if contents, fileErr := os.ReadFile(configFile); fileErr == nil {
		if err = yaml.Unmarshal(contents, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", configFile, err)
		}
	}

	return cfg, nil
}
