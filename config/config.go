/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config loads the application configuration from a YAML file and
// the environment.
package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tomoncle/roster/database"
	"github.com/tomoncle/roster/utils"
)

type Config struct {
	Env      string          `yaml:"env" env:"ENV" env-default:"dev" env-description:"deployment environment"`
	Log      LogConfig       `yaml:"log"`
	Database database.Config `yaml:"database"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info" env-description:"trace, debug, info, warn or error"`
	Format string `yaml:"format" env:"CONSOLE_LOG_FORMAT" env-default:"text" env-description:"text or json"`
}

// Load reads path and then the environment, which takes precedence. Fields
// set by neither get their env-default.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadEnv reads the configuration from the environment only.
func LoadEnv() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config from environment: %w", err)
	}
	return &cfg, nil
}

// MustLoad is Load, or LoadEnv when path is empty, panicking on error.
func MustLoad(path string) *Config {
	var (
		cfg *Config
		err error
	)
	if path == "" {
		cfg, err = LoadEnv()
	} else {
		cfg, err = Load(path)
	}
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	return cfg
}

// Apply configures every registered logger from c.Log.
func (c *Config) Apply() {
	utils.ConfigureConsoleLogFormat(c.Log.Format)
	utils.SetAllLoggersLevel(utils.ParseLogLevel(c.Log.Level))
}

// Usage lists the environment variables Config understands.
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return err.Error()
	}
	return text
}
