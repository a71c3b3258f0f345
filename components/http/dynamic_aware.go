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

package http

import (
	"github.com/pkg/errors"
	"github.com/rulego/dynroute/api/types"
	"github.com/rulego/dynroute/builtin/processor"
	"github.com/rulego/dynroute/catalog"
)

// DefaultAuthorityKeys 保存 host[:port][/path] 的参数名，按顺序查找第一个存在的
var DefaultAuthorityKeys = []string{"httpUri", "httpURI"}

// Ensure that SendDynamicAware implements the types.SendDynamicAware interface.
var _ types.SendDynamicAware = (*SendDynamicAware)(nil)

// SendDynamicAware http动态端点优化器
// 把动态uri中的路径和宽松参数移到消息元数据 httpPath、httpQuery 中，
// 所有目标地址相同的动态请求复用同一个静态端点，例如：
//
//	http://localhost:8080/bar?throwExceptionOnFailure=false&drink=beer
//	http://localhost:8080/bar?throwExceptionOnFailure=false&drink=wine
//
// 都发送到静态端点 http://localhost:8080?throwExceptionOnFailure=false ，
// 发送前设置 httpPath=/bar ，httpQuery=drink=beer 或者 drink=wine
type SendDynamicAware struct {
	scheme        string
	catalog       types.RuntimeCatalog
	authorityKeys []string
}

// Option 优化器选项
type Option func(*SendDynamicAware)

// WithAuthorityKeys 设置保存地址的参数名
func WithAuthorityKeys(keys ...string) Option {
	return func(s *SendDynamicAware) {
		if len(keys) > 0 {
			s.authorityKeys = append([]string(nil), keys...)
		}
	}
}

// NewSendDynamicAware 创建scheme对应的优化器，创建后不可修改
func NewSendDynamicAware(scheme string, catalog types.RuntimeCatalog, opts ...Option) *SendDynamicAware {
	s := &SendDynamicAware{
		scheme:        scheme,
		catalog:       catalog,
		authorityKeys: DefaultAuthorityKeys,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SendDynamicAware) Scheme() string {
	return s.scheme
}

// Prepare 解析动态uri的全部参数和宽松参数
func (s *SendDynamicAware) Prepare(uri string) (types.DynamicAwareEntry, error) {
	properties, err := s.catalog.EndpointProperties(uri)
	if err != nil {
		return types.DynamicAwareEntry{}, errors.Wrapf(err, "prepare %s", uri)
	}
	lenient, err := s.catalog.EndpointLenientProperties(uri)
	if err != nil {
		return types.DynamicAwareEntry{}, errors.Wrapf(err, "prepare %s", uri)
	}
	return types.NewDynamicAwareEntry(uri, properties, lenient), nil
}

// ResolveStaticUri 去掉路径和宽松参数后的静态uri
// 既没有路径也没有宽松参数时返回false，表示不需要优化
func (s *SendDynamicAware) ResolveStaticUri(entry types.DynamicAwareEntry) (string, bool, error) {
	authority, _, hasPath := decomposeUri(entry.OriginalUri(), s.scheme)
	if !hasPath && !entry.HasLenientProperties() {
		return "", false, nil
	}
	params := entry.Properties()
	for k := range entry.LenientProperties() {
		params.Delete(k)
	}
	if hasPath {
		for _, key := range s.authorityKeys {
			if params.Has(key) {
				params.Set(key, authority)
				break
			}
		}
	}
	uri, err := s.catalog.AsEndpointUri(s.scheme, params, false)
	if err != nil {
		return "", false, errors.Wrapf(err, "resolve static uri of %s", entry.OriginalUri())
	}
	return uri, true, nil
}

// CreatePreProcessor 发送前把路径和宽松参数写入消息元数据
func (s *SendDynamicAware) CreatePreProcessor(entry types.DynamicAwareEntry) (types.Process, error) {
	var steps []types.Process
	if _, path, hasPath := decomposeUri(entry.OriginalUri(), s.scheme); hasPath {
		steps = append(steps, processor.SetMetadata(types.HttpPathKey, path))
	}
	if entry.HasLenientProperties() {
		query := catalog.CreateQueryString(entry.LenientProperties(), false)
		steps = append(steps, processor.SetMetadata(types.HttpQueryKey, query))
	}
	return processor.Pipeline(steps...), nil
}

// CreatePostProcessor http组件发送后不需要清理
func (s *SendDynamicAware) CreatePostProcessor(entry types.DynamicAwareEntry) (types.Process, error) {
	return nil, nil
}
