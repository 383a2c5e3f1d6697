// Copyright (c) 2024-2025 The linea-sequencer developers
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.
//

package config

import (
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Settings struct {
	viper *viper.Viper
}

func NewSettings() *Settings {
	return &Settings{
		viper: viper.New(),
	}
}

func (s *Settings) Viper() *viper.Viper {
	return s.viper
}

// LoadConfigFile reads the configuration file at the given path on top of the
// defaults. A missing or unreadable file leaves the defaults untouched.
func (s *Settings) LoadConfigFile(file string) (*Configuration, error) {
	conf := GetDefaultParams()

	paths, fileName := filepath.Split(file)
	fileExt := filepath.Ext(file)
	if paths == "" {
		paths = "."
	}
	s.viper.AddConfigPath(paths)
	s.viper.SetConfigName(strings.TrimSuffix(fileName, fileExt))
	s.viper.SetConfigType(strings.TrimPrefix(fileExt, "."))

	if err := s.viper.ReadInConfig(); err != nil {
		return conf, err
	}
	if err := s.viper.Unmarshal(conf); err != nil {
		return GetDefaultParams(), err
	}
	return conf, nil
}
