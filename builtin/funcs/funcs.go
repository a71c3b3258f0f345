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

package funcs

import (
	"net/url"
	"sort"
	"strings"
	"sync"
)

// TemplateFunc 内置模板函数，动态uri中可以直接调用，例如：${escape(name)}
var TemplateFunc = NewFuncMap[any]()

func init() {
	TemplateFunc.RegisterAll(map[string]any{
		//query参数值编码
		"escape": url.QueryEscape,
		//路径编码
		"pathEscape": url.PathEscape,
		"lower":      strings.ToLower,
		"upper":      strings.ToUpper,
		"trim":       strings.TrimSpace,
	})
}

// FuncMap 并发安全的函数表
type FuncMap[T any] struct {
	v map[string]T
	sync.RWMutex
}

func NewFuncMap[T any]() *FuncMap[T] {
	return &FuncMap[T]{v: make(map[string]T)}
}

func (x *FuncMap[T]) Register(name string, value T) {
	x.Lock()
	defer x.Unlock()
	if x.v == nil {
		x.v = make(map[string]T)
	}
	x.v[name] = value
}

func (x *FuncMap[T]) RegisterAll(values map[string]T) {
	x.Lock()
	defer x.Unlock()
	if x.v == nil {
		x.v = make(map[string]T)
	}
	for k, v := range values {
		x.v[k] = v
	}
}

func (x *FuncMap[T]) UnRegister(name string) {
	x.Lock()
	defer x.Unlock()
	delete(x.v, name)
}

func (x *FuncMap[T]) Get(name string) (T, bool) {
	x.RLock()
	defer x.RUnlock()
	f, ok := x.v[name]
	return f, ok
}

// GetAll 返回副本
func (x *FuncMap[T]) GetAll() map[string]T {
	x.RLock()
	defer x.RUnlock()
	cp := make(map[string]T, len(x.v))
	for k, v := range x.v {
		cp[k] = v
	}
	return cp
}

// Names 按字母排序的函数名
func (x *FuncMap[T]) Names() []string {
	x.RLock()
	defer x.RUnlock()
	var keys = make([]string, 0, len(x.v))
	for k := range x.v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
