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

// Package schedule provides the schedule component: a route input that fires an
// empty message on a cron schedule. The cron expression has a seconds field.
//
// Example:
//
//	schedule:report?cron=*/5 * * * * *
//	schedule:heartbeat?cron=@every 1m
package schedule

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rulego/dynroute/api/types"
	"github.com/rulego/dynroute/catalog"
)

const (
	Type = "schedule"
	// NameMetadataKey 触发的定时任务名称
	NameMetadataKey = "scheduleName"
)

var schema = types.ComponentSchema{
	Scheme: Type,
	Syntax: "schedule:name",
	Title:  "Schedule",
	Fields: []types.SchemaField{
		{Name: "name", Kind: types.FieldKindPath, Type: "string", Required: true},
		{Name: "cron", Kind: types.FieldKindParameter, Type: "string", Required: true, Desc: "cron expression with seconds field"},
	},
}

// Ensure that Component implements the types.Component and types.Lifecycle interfaces.
var (
	_ types.Component = (*Component)(nil)
	_ types.Lifecycle = (*Component)(nil)
)

// Component 定时组件，所有定时端点共用一个cron
type Component struct {
	cron    *cron.Cron
	logger  types.Logger
	started bool
	lock    sync.Mutex
}

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
	spec := catalog.DecodeValue(properties.GetValue("cron"))
	if name == "" || spec == "" {
		return nil, errors.Errorf("invalid schedule endpoint %s: name and cron are required", uri)
	}
	if _, err := secondsParser.Parse(spec); err != nil {
		return nil, errors.Wrapf(err, "invalid schedule endpoint %s", uri)
	}
	c.lock.Lock()
	if c.logger == nil {
		c.logger = config.Logger
	}
	c.lock.Unlock()
	return &Endpoint{uri: uri, name: name, spec: spec, component: c}, nil
}

// secondsParser 与 cron.WithSeconds() 使用相同的语法
var secondsParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func (c *Component) getCron() *cron.Cron {
	if c.cron == nil {
		c.cron = cron.New(cron.WithSeconds())
	}
	return c.cron
}

func (c *Component) add(spec string, f func()) (cron.EntryID, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.getCron().AddFunc(spec, f)
}

func (c *Component) remove(id cron.EntryID) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.cron != nil {
		c.cron.Remove(id)
	}
}

// Start 启动cron，重复调用不做处理
func (c *Component) Start() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if !c.started {
		c.getCron().Start()
		c.started = true
	}
	return nil
}

// Stop 停止cron，等待正在执行的任务结束
func (c *Component) Stop() {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.started {
		<-c.cron.Stop().Done()
		c.started = false
	}
}

func (c *Component) printf(format string, v ...interface{}) {
	if c.logger != nil {
		c.logger.Printf(format, v...)
	}
}

// Ensure that Endpoint implements the types.ConsumerEndpoint interface.
var _ types.ConsumerEndpoint = (*Endpoint)(nil)

// Endpoint 定时端点，只能作为路由输入
type Endpoint struct {
	uri       string
	name      string
	spec      string
	component *Component
	entryId   cron.EntryID
}

func (e *Endpoint) Uri() string {
	return e.uri
}

func (e *Endpoint) Send(exchange *types.Exchange) error {
	return errors.Errorf("schedule endpoint %s can only be used as a route input", e.uri)
}

func (e *Endpoint) Consume(handler types.Process) error {
	id, err := e.component.add(e.spec, func() {
		e.fire(handler)
	})
	if err != nil {
		return errors.Wrapf(err, "schedule endpoint %s", e.uri)
	}
	e.entryId = id
	return nil
}

func (e *Endpoint) fire(handler types.Process) {
	defer func() {
		if err := recover(); err != nil {
			e.component.printf("schedule handler err :%v", err)
		}
	}()
	metadata := types.NewMetadata()
	metadata.PutValue(NameMetadataKey, e.name)
	exchange := types.NewExchange(context.Background(), types.NewMsg(0, Type, types.TEXT, metadata, ""))
	if !handler(exchange) && exchange.Err != nil {
		e.component.printf("schedule %s err :%v", e.name, exchange.Err)
	}
}

func (e *Endpoint) Start() error {
	return e.component.Start()
}

func (e *Endpoint) Destroy() {
	if e.entryId != 0 {
		e.component.remove(e.entryId)
		e.entryId = 0
	}
}
