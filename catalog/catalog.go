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

// Package catalog provides the default runtime catalog: a registry of component
// schemas that turns endpoint uris into ordered parameter maps and assembles
// canonical endpoint uris from parameter maps.
//
// Package catalog 组件参数定义目录，负责端点uri与参数之间的转换。
//
// An endpoint uri has the form:
//
//	scheme:path?query
//	scheme://path?query
//
// The path part is split into path parameters following the schema syntax, for
// example the syntax `rest:method:path` maps `rest:get:/users/:id` to
// method=get and path=/users/:id. The last path parameter takes the remainder.
package catalog

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rulego/dynroute/api/types"
)

// Ensure that Catalog implements the types.RuntimeCatalog interface.
var _ types.RuntimeCatalog = (*Catalog)(nil)

// Catalog 默认组件参数定义目录，并发安全
type Catalog struct {
	schemas map[string]*compiledSchema
	sync.RWMutex
}

// compiledSchema 预先解析语法的组件定义
type compiledSchema struct {
	schema types.ComponentSchema
	syntax syntax
}

// NewCatalog 创建组件参数定义目录
func NewCatalog(schemas ...types.ComponentSchema) (*Catalog, error) {
	c := &Catalog{schemas: make(map[string]*compiledSchema)}
	if err := c.Register(schemas...); err != nil {
		return nil, err
	}
	return c, nil
}

// Register 注册组件参数定义，如果scheme已经存在则返回错误
func (c *Catalog) Register(schemas ...types.ComponentSchema) error {
	c.Lock()
	defer c.Unlock()
	if c.schemas == nil {
		c.schemas = make(map[string]*compiledSchema)
	}
	for _, schema := range schemas {
		if schema.Scheme == "" {
			return errors.New("schema scheme can not be empty")
		}
		if _, ok := c.schemas[schema.Scheme]; ok {
			return errors.Errorf("the schema already exists. scheme=%s", schema.Scheme)
		}
		s, err := parseSyntax(schema.Scheme, schema.Syntax)
		if err != nil {
			return err
		}
		c.schemas[schema.Scheme] = &compiledSchema{schema: schema, syntax: s}
	}
	return nil
}

// Unregister 删除组件参数定义
func (c *Catalog) Unregister(scheme string) {
	c.Lock()
	defer c.Unlock()
	delete(c.schemas, scheme)
}

// Schema 获取组件参数定义
func (c *Catalog) Schema(scheme string) (types.ComponentSchema, bool) {
	s, ok := c.get(scheme)
	if !ok {
		return types.ComponentSchema{}, false
	}
	return s.schema, true
}

// Schemes 已注册的scheme，按字母排序
func (c *Catalog) Schemes() []string {
	c.RLock()
	defer c.RUnlock()
	var schemes []string
	for k := range c.schemas {
		schemes = append(schemes, k)
	}
	sort.Strings(schemes)
	return schemes
}

func (c *Catalog) get(scheme string) (*compiledSchema, bool) {
	c.RLock()
	defer c.RUnlock()
	s, ok := c.schemas[scheme]
	return s, ok
}

func (c *Catalog) lookup(uri string) (*compiledSchema, string, error) {
	scheme, remaining, ok := SplitScheme(uri)
	if !ok {
		return nil, "", errors.Wrapf(types.ErrSchemaLookup, "no scheme in uri %s", uri)
	}
	s, ok := c.get(scheme)
	if !ok {
		return nil, "", errors.Wrapf(types.ErrSchemaLookup, "unknown component scheme %s", scheme)
	}
	return s, remaining, nil
}

// EndpointProperties 解析uri得到全部参数
// 路径参数按语法顺序在前，query参数按uri中出现的顺序在后，query参数值统一为编码后的形式
func (c *Catalog) EndpointProperties(uri string) (*types.Properties, error) {
	s, remaining, err := c.lookup(uri)
	if err != nil {
		return nil, err
	}
	path, query := cutQuery(s.syntax.trimPrefix(remaining))

	props := &types.Properties{}
	pathValues, err := s.syntax.split(path)
	if err != nil {
		return nil, errors.Wrapf(types.ErrSchemaLookup, "uri %s: %s", uri, err.Error())
	}
	for i, name := range s.syntax.names {
		if v := pathValues[i]; v != "" {
			props.Set(name, v)
		}
	}
	for _, kv := range parseQuery(query) {
		props.Set(kv[0], kv[1])
	}
	return props, nil
}

// EndpointLenientProperties 解析uri中不属于组件参数定义的query参数
// 组件不允许宽松参数时返回空map
func (c *Catalog) EndpointLenientProperties(uri string) (map[string]string, error) {
	s, remaining, err := c.lookup(uri)
	if err != nil {
		return nil, err
	}
	lenient := make(map[string]string)
	if !s.schema.Lenient {
		return lenient, nil
	}
	_, query := cutQuery(s.syntax.trimPrefix(remaining))
	for _, kv := range parseQuery(query) {
		if _, ok := s.schema.Field(kv[0]); !ok {
			lenient[kv[0]] = kv[1]
		}
	}
	return lenient, nil
}

// AsEndpointUri 根据参数组装规范的端点uri
// 路径参数按语法拼接，其余参数按插入顺序作为query参数
func (c *Catalog) AsEndpointUri(scheme string, properties *types.Properties, encode bool) (string, error) {
	s, ok := c.get(scheme)
	if !ok {
		return "", errors.Wrapf(types.ErrAssembly, "unknown component scheme %s", scheme)
	}
	pathValues := make([]string, len(s.syntax.names))
	for i, name := range s.syntax.names {
		v := properties.GetValue(name)
		if v == "" {
			if f, ok := s.schema.Field(name); ok && f.Required {
				return "", errors.Wrapf(types.ErrAssembly, "missing required path parameter %s for scheme %s", name, scheme)
			}
		}
		pathValues[i] = v
	}

	var sb strings.Builder
	sb.WriteString(scheme)
	sb.WriteString(s.syntax.prefix)
	sb.WriteString(s.syntax.join(pathValues))

	first := true
	properties.Range(func(key, value string) bool {
		if key == "" || s.syntax.isPathName(key) {
			return true
		}
		if first {
			sb.WriteByte('?')
			first = false
		} else {
			sb.WriteByte('&')
		}
		sb.WriteString(key)
		sb.WriteByte('=')
		if encode {
			sb.WriteString(EncodeValue(value))
		} else {
			sb.WriteString(value)
		}
		return true
	})
	return sb.String(), nil
}
