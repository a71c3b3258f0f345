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

// SendDynamicAware 动态端点优化器
// SendDynamicAware lets a component serve a dynamic destination (ToD) with a single
// cached static endpoint. The dynamic part of the uri is moved onto the message
// as metadata by the pre processor.
//
// 调用顺序 / Protocol:
//
//	entry, err := aware.Prepare(uri)
//	staticUri, ok, err := aware.ResolveStaticUri(entry)
//	// ok=false: 不需要优化，使用原始uri创建端点
//	pre, err := aware.CreatePreProcessor(entry)
//	post, err := aware.CreatePostProcessor(entry)
//
// All methods must be safe for concurrent use. An instance serves exactly one
// scheme, fixed when it is constructed.
type SendDynamicAware interface {
	// Scheme 优化器注册的scheme
	Scheme() string
	// Prepare 解析动态uri的参数
	Prepare(uri string) (DynamicAwareEntry, error)
	// ResolveStaticUri 计算静态uri，返回false表示不需要优化
	ResolveStaticUri(entry DynamicAwareEntry) (string, bool, error)
	// CreatePreProcessor 发送前执行的处理器，nil表示不需要
	CreatePreProcessor(entry DynamicAwareEntry) (Process, error)
	// CreatePostProcessor 发送后执行的处理器，nil表示不需要
	CreatePostProcessor(entry DynamicAwareEntry) (Process, error)
}

// DynamicAwareEntry 一次优化过程使用的不可变参数快照
type DynamicAwareEntry struct {
	originalUri       string
	properties        *Properties
	lenientProperties map[string]string
}

// NewDynamicAwareEntry 创建参数快照，入参会被复制
// lenient 中不存在于 properties 的key会被丢弃
func NewDynamicAwareEntry(originalUri string, properties *Properties, lenient map[string]string) DynamicAwareEntry {
	props := properties.Copy()
	lenientCopy := make(map[string]string, len(lenient))
	for k, v := range lenient {
		if props.Has(k) {
			lenientCopy[k] = v
		}
	}
	return DynamicAwareEntry{
		originalUri:       originalUri,
		properties:        props,
		lenientProperties: lenientCopy,
	}
}

// OriginalUri 动态计算出来的原始uri
func (e DynamicAwareEntry) OriginalUri() string {
	return e.originalUri
}

// Properties 全部参数，返回副本
func (e DynamicAwareEntry) Properties() *Properties {
	return e.properties.Copy()
}

// LenientProperties 宽松参数，返回副本
func (e DynamicAwareEntry) LenientProperties() map[string]string {
	m := make(map[string]string, len(e.lenientProperties))
	for k, v := range e.lenientProperties {
		m[k] = v
	}
	return m
}

// HasLenientProperties 是否有宽松参数
func (e DynamicAwareEntry) HasLenientProperties() bool {
	return len(e.lenientProperties) > 0
}
