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
	"context"
)

// 消息元数据中约定的临时属性key
const (
	// HttpPathKey 动态请求路径，http生产者会把它拼接到端点地址后面
	HttpPathKey = "httpPath"
	// HttpQueryKey 动态请求参数，http生产者会用它替换端点自带的query
	HttpQueryKey = "httpQuery"
	// StatusKey http响应状态
	StatusKey = "status"
	// StatusCodeKey http响应状态码
	StatusCodeKey = "statusCode"
	// EndpointUriKey 最后一次发送的目标端点
	EndpointUriKey = "toEndpoint"
)

// Exchange 一次消息交换，In为请求消息，Out为目标端点的响应消息
// Exchange carries one message through a route. Each exchange is owned by a
// single goroutine at a time; processors only mutate the exchange they are given.
type Exchange struct {
	In  *RuleMsg
	Out *RuleMsg
	// Context 取消、超时信号
	Context context.Context
	// Err 处理过程中的错误，处理器返回false时应设置
	Err error
}

// NewExchange 创建消息交换
func NewExchange(ctx context.Context, msg RuleMsg) *Exchange {
	if ctx == nil {
		ctx = context.Background()
	}
	if msg.Metadata == nil {
		msg.Metadata = NewMetadata()
	}
	return &Exchange{In: &msg, Context: ctx}
}

// GetContext 获取上下文，未设置返回context.Background()
func (e *Exchange) GetContext() context.Context {
	if e.Context == nil {
		return context.Background()
	}
	return e.Context
}

// Message 当前结果消息，有响应返回Out，否则返回In
func (e *Exchange) Message() *RuleMsg {
	if e.Out != nil {
		return e.Out
	}
	return e.In
}

// Promote 把Out消息作为下一步的In消息
func (e *Exchange) Promote() {
	if e.Out != nil {
		e.In = e.Out
		e.Out = nil
	}
}

// Process 处理函数
// true:执行下一个处理器，否则不执行
type Process func(exchange *Exchange) bool

// Endpoint 端点，通过uri唯一标识，可被多个消息并发复用
// Endpoint is addressed by its uri and is shared by all messages sent to that uri.
// Implementations must be safe for concurrent Send calls.
type Endpoint interface {
	// Uri 端点uri，同时是端点注册表的key
	Uri() string
	// Send 把 exchange.In 发送到端点，响应写入 exchange.Out
	Send(exchange *Exchange) error
	// Destroy 释放资源
	Destroy()
}

// ConsumerEndpoint 可以作为路由输入的端点
type ConsumerEndpoint interface {
	Endpoint
	// Consume 设置路由处理函数，端点收到的每条消息都交给它处理
	Consume(handler Process) error
	// Start 开始接收消息
	Start() error
}

// Component 组件，为一个或者多个scheme创建端点
type Component interface {
	// Type 组件类型
	Type() string
	// New 创建新的组件实例，每个路由上下文使用自己的实例
	New() Component
	// Schemes 组件处理的scheme列表
	Schemes() []string
	// Schemas 组件端点参数定义，注册到catalog
	Schemas() []ComponentSchema
	// CreateEndpoint 创建端点
	// properties: catalog 解析出来的全部参数
	// lenient: 不在参数定义里的宽松参数
	CreateEndpoint(config Config, uri string, properties *Properties, lenient map[string]string) (Endpoint, error)
}

// Lifecycle 组件可选接口，路由上下文启动和停止时调用
type Lifecycle interface {
	Start() error
	Stop()
}

// DynamicAwareProvider 组件可选接口，为组件的每个scheme提供动态端点优化器
type DynamicAwareProvider interface {
	// NewSendDynamicAware 为指定scheme创建优化器，每个scheme只会调用一次
	NewSendDynamicAware(scheme string, catalog RuntimeCatalog) SendDynamicAware
}
