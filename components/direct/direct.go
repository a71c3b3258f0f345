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

// Package direct provides the direct component: a synchronous in-process hand-off
// from a producer to the route consuming the same name.
//
// Example:
//
//	direct:start
package direct

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rulego/dynroute/api/types"
)

const Type = "direct"

var schema = types.ComponentSchema{
	Scheme: Type,
	Syntax: "direct:name",
	Title:  "Direct",
	Fields: []types.SchemaField{
		{Name: "name", Kind: types.FieldKindPath, Type: "string", Required: true, Desc: "name of the direct endpoint"},
	},
}

// Ensure that Component implements the types.Component interface.
var _ types.Component = (*Component)(nil)

// Component direct组件，同一个路由上下文内按名称分发消息
type Component struct {
	consumers map[string]types.Process
	lock      sync.RWMutex
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
	if name == "" {
		return nil, errors.Errorf("invalid direct endpoint %s: missing name", uri)
	}
	return &Endpoint{uri: uri, name: name, component: c}, nil
}

func (c *Component) consume(name string, handler types.Process) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.consumers == nil {
		c.consumers = make(map[string]types.Process)
	}
	if _, ok := c.consumers[name]; ok {
		return errors.Errorf("the direct consumer already exists. name=%s", name)
	}
	c.consumers[name] = handler
	return nil
}

func (c *Component) consumer(name string) (types.Process, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	handler, ok := c.consumers[name]
	return handler, ok
}

func (c *Component) remove(name string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	delete(c.consumers, name)
}

// Ensure that Endpoint implements the types.ConsumerEndpoint interface.
var _ types.ConsumerEndpoint = (*Endpoint)(nil)

// Endpoint direct端点，既可以作为路由输入，也可以作为发送目标
type Endpoint struct {
	uri       string
	name      string
	component *Component
	consuming bool
}

func (e *Endpoint) Uri() string {
	return e.uri
}

// Name 端点名称
func (e *Endpoint) Name() string {
	return e.name
}

// Send 在当前goroutine执行消费该名称的路由，路由的结果写入 exchange.Out
func (e *Endpoint) Send(exchange *types.Exchange) error {
	handler, ok := e.component.consumer(e.name)
	if !ok {
		return errors.Wrapf(types.ErrNoConsumer, "endpoint %s", e.uri)
	}
	in := exchange.In.Copy()
	sub := &types.Exchange{In: &in, Context: exchange.GetContext()}
	if !handler(sub) && sub.Err != nil {
		return sub.Err
	}
	exchange.Out = sub.Message()
	return nil
}

func (e *Endpoint) Consume(handler types.Process) error {
	if err := e.component.consume(e.name, handler); err != nil {
		return err
	}
	e.consuming = true
	return nil
}

func (e *Endpoint) Start() error {
	return nil
}

func (e *Endpoint) Destroy() {
	if e.consuming {
		e.component.remove(e.name)
		e.consuming = false
	}
}
