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

// Package engine provides the routing context: it owns the components, the
// endpoint registry and the routes, and sends messages to dynamic destinations
// through the per-scheme SendDynamicAware optimizers.
//
// Package engine 路由上下文，管理组件、端点注册表和路由。
//
// Usage:
//
//	ctx := engine.NewContext(types.WithLogger(logger))
//	_, err := ctx.AddRouter(endpoint.NewRouter().From("direct:start").
//		ToD("http://localhost:8080/bar?throwExceptionOnFailure=false&drink=${drink}").End())
//	err = ctx.Start()
//	defer ctx.Stop()
//	msg, err := ctx.Request("direct:start", types.NewMsg(0, "TEST", types.TEXT, types.BuildMetadata(map[string]string{"drink": "beer"}), ""))
package engine

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rulego/dynroute/api/types"
	"github.com/rulego/dynroute/catalog"
)

// schemaRegistry catalog的可选接口，组件加入时注册组件参数定义
type schemaRegistry interface {
	Schema(scheme string) (types.ComponentSchema, bool)
	Register(schemas ...types.ComponentSchema) error
}

// Context 路由上下文
// Context is safe for concurrent use.
type Context struct {
	config     types.Config
	components map[string]types.Component
	awares     map[string]types.SendDynamicAware
	endpoints  *endpointRegistry
	routes     map[string]*route
	pending    map[string]struct{}
	routeIds   []string
	metrics    *metrics
	debugf     func(format string, v ...interface{})
	started    bool
	stopped    bool
	lock       sync.RWMutex
}

// NewContext 创建路由上下文，并加入 Registry 中全部组件的新实例
func NewContext(opts ...types.Option) *Context {
	config := types.NewConfig(opts...)
	config.Logger = types.NewLogger(config.Logger)
	if config.Properties == nil {
		config.Properties = types.NewMetadata()
	}
	if config.Catalog == nil {
		config.Catalog, _ = catalog.NewCatalog()
	}
	//容量大于0，不会返回错误
	endpoints, _ := newEndpointRegistry(config.EndpointCacheSize)
	ctx := &Context{
		config:     config,
		components: make(map[string]types.Component),
		awares:     make(map[string]types.SendDynamicAware),
		endpoints:  endpoints,
		routes:     make(map[string]*route),
		pending:    make(map[string]struct{}),
		metrics:    newMetrics(config.Registerer),
		debugf:     types.DebugLogger(config.Logger),
	}
	for _, component := range Registry.Components() {
		if err := ctx.AddComponent(component.New()); err != nil {
			config.Logger.Printf("add component type=%s error: %v", component.Type(), err)
		}
	}
	return ctx
}

// Config 路由上下文配置
func (c *Context) Config() types.Config {
	return c.config
}

// Catalog 组件参数定义目录
func (c *Context) Catalog() types.RuntimeCatalog {
	return c.config.Catalog
}

// AddComponent 加入组件，替换相同scheme的组件
// 组件实现了 types.DynamicAwareProvider 时，为每个scheme创建一个优化器
func (c *Context) AddComponent(component types.Component) error {
	if registry, ok := c.config.Catalog.(schemaRegistry); ok {
		for _, schema := range component.Schemas() {
			if _, exists := registry.Schema(schema.Scheme); exists {
				continue
			}
			if err := registry.Register(schema); err != nil {
				return errors.Wrapf(err, "register schema of component %s", component.Type())
			}
		}
	}
	provider, _ := component.(types.DynamicAwareProvider)

	c.lock.Lock()
	for _, scheme := range component.Schemes() {
		c.components[scheme] = component
		if provider != nil {
			c.awares[scheme] = provider.NewSendDynamicAware(scheme, c.config.Catalog)
		} else {
			delete(c.awares, scheme)
		}
	}
	started := c.started
	c.lock.Unlock()

	if lifecycle, ok := component.(types.Lifecycle); ok && started {
		return lifecycle.Start()
	}
	return nil
}

// Component 获取scheme对应的组件
func (c *Context) Component(scheme string) (types.Component, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	component, ok := c.components[scheme]
	return component, ok
}

// DynamicAware 获取scheme对应的优化器
func (c *Context) DynamicAware(scheme string) (types.SendDynamicAware, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	aware, ok := c.awares[scheme]
	return aware, ok
}

// GetEndpoint 获取端点，不存在则创建，key是完整的uri
func (c *Context) GetEndpoint(uri string) (types.Endpoint, error) {
	return c.getEndpoint(strings.TrimSpace(uri), false)
}

func (c *Context) getEndpoint(uri string, pin bool) (types.Endpoint, error) {
	if c.isStopped() {
		return nil, types.ErrContextStopped
	}
	return c.endpoints.getOrCreate(uri, pin, func() (types.Endpoint, error) {
		return c.createEndpoint(uri)
	})
}

func (c *Context) createEndpoint(uri string) (types.Endpoint, error) {
	scheme, _, ok := catalog.SplitScheme(uri)
	if !ok {
		return nil, errors.Wrapf(types.ErrComponentNotFound, "no scheme in uri %s", uri)
	}
	component, ok := c.Component(scheme)
	if !ok {
		return nil, errors.Wrapf(types.ErrComponentNotFound, "scheme=%s", scheme)
	}
	properties, err := c.config.Catalog.EndpointProperties(uri)
	if err != nil {
		return nil, err
	}
	lenient, err := c.config.Catalog.EndpointLenientProperties(uri)
	if err != nil {
		return nil, err
	}
	endpoint, err := component.CreateEndpoint(c.config, uri, properties, lenient)
	if err != nil {
		return nil, err
	}
	c.metrics.endpointsCreated.WithLabelValues(scheme).Inc()
	c.debugf("created endpoint %s", uri)
	return endpoint, nil
}

// HasEndpoint 端点是否在注册表中
func (c *Context) HasEndpoint(uri string) bool {
	return c.endpoints.has(uri)
}

// Endpoints 注册表中全部端点的uri，按字母排序
func (c *Context) Endpoints() []string {
	return c.endpoints.uris()
}

// EndpointCount 注册表中端点数量
func (c *Context) EndpointCount() int {
	return c.endpoints.len()
}

// RemoveEndpoint 删除并销毁端点
func (c *Context) RemoveEndpoint(uri string) {
	c.endpoints.remove(uri)
}

// Request 发送消息到端点，并返回端点的响应消息
// 端点没有响应时返回发送的消息
func (c *Context) Request(uri string, msg types.RuleMsg) (types.RuleMsg, error) {
	return c.RequestWithContext(context.Background(), uri, msg)
}

// RequestWithContext 同 Request，ctx 用于取消、超时
func (c *Context) RequestWithContext(ctx context.Context, uri string, msg types.RuleMsg) (types.RuleMsg, error) {
	endpoint, err := c.GetEndpoint(uri)
	if err != nil {
		return msg, err
	}
	exchange := types.NewExchange(ctx, msg)
	err = send(endpoint, exchange)
	return *exchange.In, err
}

// send 发送消息到端点，端点的响应消息作为下一步的输入消息
func send(endpoint types.Endpoint, exchange *types.Exchange) error {
	exchange.Out = nil
	err := endpoint.Send(exchange)
	exchange.Promote()
	if exchange.In.Metadata == nil {
		exchange.In.Metadata = types.NewMetadata()
	}
	exchange.In.Metadata.PutValue(types.EndpointUriKey, endpoint.Uri())
	return err
}

// Start 启动组件和路由
func (c *Context) Start() error {
	c.lock.Lock()
	if c.stopped {
		c.lock.Unlock()
		return types.ErrContextStopped
	}
	if c.started {
		c.lock.Unlock()
		return nil
	}
	c.started = true
	lifecycles := c.lifecycles()
	routes := c.routeList()
	c.lock.Unlock()

	for _, lifecycle := range lifecycles {
		if err := lifecycle.Start(); err != nil {
			return err
		}
	}
	for _, r := range routes {
		if err := r.consumer.Start(); err != nil {
			return errors.Wrapf(err, "start route %s", r.id)
		}
	}
	return nil
}

// Stop 销毁全部端点并停止组件，停止后不能再使用
func (c *Context) Stop() {
	c.lock.Lock()
	if c.stopped {
		c.lock.Unlock()
		return
	}
	c.stopped = true
	lifecycles := c.lifecycles()
	c.routes = make(map[string]*route)
	c.routeIds = nil
	c.lock.Unlock()

	c.endpoints.purge()
	for _, lifecycle := range lifecycles {
		lifecycle.Stop()
	}
}

func (c *Context) isStopped() bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.stopped
}

// lifecycles 实现了 types.Lifecycle 的组件，一个组件处理多个scheme时只返回一次
func (c *Context) lifecycles() []types.Lifecycle {
	var list []types.Lifecycle
	seen := make(map[types.Component]struct{})
	for _, component := range c.components {
		if _, ok := seen[component]; ok {
			continue
		}
		seen[component] = struct{}{}
		if lifecycle, ok := component.(types.Lifecycle); ok {
			list = append(list, lifecycle)
		}
	}
	return list
}
