/*
 * Copyright 2024 The RuleGo Authors.
 *
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

// Package config 加载 dynroute 服务的配置文件
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rulego/dynroute/endpoint"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config dynroute 服务配置
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	// EndpointCacheSize 端点注册表容量
	EndpointCacheSize int `mapstructure:"endpointCacheSize"`
	// Global 全局配置，路由中通过 ${global.key} 访问，key统一为小写
	Global map[string]string `mapstructure:"global"`
	// CatalogFiles 额外的组件参数定义文件
	CatalogFiles []string `mapstructure:"catalogFiles"`
	// RoutesFile 路由定义文件，与 Routes 合并
	RoutesFile string                     `mapstructure:"routesFile"`
	Routes     []endpoint.RouteDefinition `mapstructure:"routes"`
}

// ServerConfig 服务监听配置
type ServerConfig struct {
	// Addr rest组件监听地址
	Addr string `mapstructure:"addr"`
	// MetricsAddr prometheus指标监听地址，为空不开启
	MetricsAddr string `mapstructure:"metricsAddr"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"`
	// File 日志文件，为空输出到stdout
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	Compress   bool   `mapstructure:"compress"`
}

// Load 读取配置文件，支持yaml、json、toml
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.yaml"
	}
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	if cfg.RoutesFile != "" {
		routes, err := loadRoutes(resolvePath(path, cfg.RoutesFile))
		if err != nil {
			return nil, err
		}
		cfg.Routes = append(cfg.Routes, routes...)
	}
	for i, file := range cfg.CatalogFiles {
		cfg.CatalogFiles[i] = resolvePath(path, file)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":9090")
	v.SetDefault("server.metricsAddr", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.maxSize", 100)
	v.SetDefault("log.maxBackups", 10)
	v.SetDefault("log.compress", true)
	v.SetDefault("endpointCacheSize", 1000)
}

// Validate 校验配置
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	if c.EndpointCacheSize <= 0 {
		return errors.Errorf("endpointCacheSize must be greater than 0, got %d", c.EndpointCacheSize)
	}
	ids := make(map[string]struct{}, len(c.Routes))
	for i, route := range c.Routes {
		if strings.TrimSpace(route.From) == "" {
			return errors.Errorf("routes[%d]: from can not be empty", i)
		}
		if route.Id == "" {
			continue
		}
		if _, ok := ids[route.Id]; ok {
			return errors.Errorf("routes[%d]: duplicate route id %s", i, route.Id)
		}
		ids[route.Id] = struct{}{}
	}
	return nil
}

func loadRoutes(path string) ([]endpoint.RouteDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read routes file")
	}
	return endpoint.ParseRoutes(data)
}

// resolvePath 相对路径以配置文件所在目录为基准
func resolvePath(configPath, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(configPath), path)
}
