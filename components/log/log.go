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

// Package log provides the log component, a producer that writes the message to
// the routing context logger.
//
// Example:
//
//	log:orders?level=debug
package log

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/rulego/dynroute/api/types"
)

const Type = "log"

var schema = types.ComponentSchema{
	Scheme: Type,
	Syntax: "log:name",
	Title:  "Log",
	Fields: []types.SchemaField{
		{Name: "name", Kind: types.FieldKindPath, Type: "string", Required: true},
		{Name: "level", Kind: types.FieldKindParameter, Type: "string", Default: "info", Desc: "debug,info,warn,error"},
	},
}

// Ensure that Component implements the types.Component interface.
var _ types.Component = (*Component)(nil)

type Component struct{}

func (c *Component) Type() string {
	return Type
}

func (c *Component) New() types.Component {
	return &Component{}
}

func (c *Component) Schemes() []string {
	return []string{Type}
}

func (c *Component) Schemas() []types.ComponentSchema {
	return []types.ComponentSchema{schema}
}

func (c *Component) CreateEndpoint(config types.Config, uri string, properties *types.Properties, lenient map[string]string) (types.Endpoint, error) {
	name := properties.GetValue("name")
	if name == "" {
		return nil, errors.Errorf("invalid log endpoint %s: missing name", uri)
	}
	level := strings.ToLower(properties.GetValue("level"))
	if level == "" {
		level = "info"
	}
	printf, err := levelPrintf(types.NewLogger(config.Logger), level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log endpoint %s", uri)
	}
	return &Endpoint{uri: uri, name: name, printf: printf}, nil
}

// levelLogger 支持日志级别的日志实现，例如logrus
type levelLogger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

func levelPrintf(logger types.Logger, level string) (func(format string, v ...interface{}), error) {
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return nil, errors.Errorf("unknown log level %s", level)
	}
	l, ok := logger.(levelLogger)
	if !ok {
		return logger.Printf, nil
	}
	switch level {
	case "debug":
		return l.Debugf, nil
	case "warn":
		return l.Warnf, nil
	case "error":
		return l.Errorf, nil
	default:
		return l.Infof, nil
	}
}

// Ensure that Endpoint implements the types.Endpoint interface.
var _ types.Endpoint = (*Endpoint)(nil)

// Endpoint 日志端点，不修改消息
type Endpoint struct {
	uri    string
	name   string
	printf func(format string, v ...interface{})
}

func (e *Endpoint) Uri() string {
	return e.uri
}

func (e *Endpoint) Send(exchange *types.Exchange) error {
	msg := exchange.In
	e.printf("[%s] id=%s type=%s metadata=%v data=%s", e.name, msg.Id, msg.Type, msg.Metadata.Values(), msg.Data)
	return nil
}

func (e *Endpoint) Destroy() {
}
