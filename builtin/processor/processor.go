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

// Package processor provides the generic route steps: metadata setters, step
// pipelines and a registry of named builtin processors that route definitions
// can reference by name.
package processor

import (
	"strings"
	"sync"

	"github.com/rulego/dynroute/api/types"
)

// Builtins 内置处理器，路由配置通过name调用对应的处理器
var Builtins = builtins{}

func init() {
	Builtins.RegisterAll(map[string]types.Process{
		//把响应消息作为下一步的请求消息
		"promote": func(exchange *types.Exchange) bool {
			exchange.Promote()
			return true
		},
		//清除动态http参数
		"clearHttpMetadata": RemoveMetadata(types.HttpPathKey, types.HttpQueryKey),
		//请求消息内容转大写
		"upper": func(exchange *types.Exchange) bool {
			exchange.In.Data = strings.ToUpper(exchange.In.Data)
			return true
		},
	})
}

type builtins struct {
	processors map[string]types.Process
	lock       sync.RWMutex
}

// Register 注册内置处理器
func (b *builtins) Register(name string, processor types.Process) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.processors == nil {
		b.processors = make(map[string]types.Process)
	}
	b.processors[name] = processor
}

// RegisterAll 注册内置处理器
func (b *builtins) RegisterAll(processors map[string]types.Process) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.processors == nil {
		b.processors = make(map[string]types.Process)
	}
	for k, v := range processors {
		b.processors[k] = v
	}
}

// Unregister 删除内置处理器
func (b *builtins) Unregister(names ...string) {
	b.lock.Lock()
	defer b.lock.Unlock()
	for _, name := range names {
		delete(b.processors, name)
	}
}

// Get 获取内置处理器
func (b *builtins) Get(name string) (types.Process, bool) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	p, ok := b.processors[name]
	return p, ok
}

// SetMetadata 设置请求消息元数据的处理器，值在创建时确定
// 只修改当前exchange的消息，可以被多个消息并发执行
func SetMetadata(key, value string) types.Process {
	return func(exchange *types.Exchange) bool {
		if exchange.In.Metadata == nil {
			exchange.In.Metadata = types.NewMetadata()
		}
		exchange.In.Metadata.PutValue(key, value)
		return true
	}
}

// RemoveMetadata 删除请求消息元数据的处理器
func RemoveMetadata(keys ...string) types.Process {
	return func(exchange *types.Exchange) bool {
		for _, key := range keys {
			delete(exchange.In.Metadata, key)
		}
		return true
	}
}

// Pipeline 把多个处理器按顺序组合成一个处理器
// 任意一个处理器返回false则停止执行。nil处理器会被忽略
func Pipeline(processes ...types.Process) types.Process {
	var list []types.Process
	for _, p := range processes {
		if p != nil {
			list = append(list, p)
		}
	}
	switch len(list) {
	case 0:
		return nil
	case 1:
		return list[0]
	}
	return func(exchange *types.Exchange) bool {
		for _, process := range list {
			if !process(exchange) {
				return false
			}
		}
		return true
	}
}
