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

package types

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultEndpointCacheSize 端点注册表默认容量
const DefaultEndpointCacheSize = 1000

// Config defines the configuration for the routing context.
type Config struct {
	// Logger is the logging interface, defaulting to `DefaultLogger()`.
	Logger Logger
	// Catalog resolves endpoint uris against component schemas.
	// If nil the routing context creates its own catalog.
	Catalog RuntimeCatalog
	// Registerer registers the routing metrics. Nil keeps the metrics unregistered.
	Registerer prometheus.Registerer
	// EndpointCacheSize is the maximum number of endpoints kept in the endpoint registry.
	// The least recently used endpoint is destroyed when the registry is full.
	EndpointCacheSize int
	// Properties are global properties in key-value format.
	// Dynamic destinations can read them with ${global.propertyKey}.
	Properties Metadata
}

// NewConfig creates a new Config with default values and applies the provided options.
func NewConfig(opts ...Option) Config {
	c := &Config{
		Logger:            DefaultLogger(),
		EndpointCacheSize: DefaultEndpointCacheSize,
		Properties:        NewMetadata(),
	}

	for _, opt := range opts {
		_ = opt(c)
	}
	return *c
}

// Option is a function type that modifies the Config.
type Option func(*Config) error

// WithLogger is an option that sets the logger of the Config.
func WithLogger(logger Logger) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

// WithCatalog is an option that sets the runtime catalog of the Config.
func WithCatalog(catalog RuntimeCatalog) Option {
	return func(c *Config) error {
		c.Catalog = catalog
		return nil
	}
}

// WithRegisterer is an option that sets the metrics registerer of the Config.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Config) error {
		c.Registerer = reg
		return nil
	}
}

// WithEndpointCacheSize is an option that sets the endpoint registry capacity.
func WithEndpointCacheSize(size int) Option {
	return func(c *Config) error {
		if size > 0 {
			c.EndpointCacheSize = size
		}
		return nil
	}
}

// WithProperties is an option that sets the global properties of the Config.
func WithProperties(properties Metadata) Option {
	return func(c *Config) error {
		c.Properties = properties
		return nil
	}
}
