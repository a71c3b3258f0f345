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

const (
	// FieldKindPath uri路径参数
	FieldKindPath = "path"
	// FieldKindParameter uri query参数
	FieldKindParameter = "parameter"
)

// RuntimeCatalog 组件参数定义目录，负责端点uri和参数之间的互相转换
// RuntimeCatalog converts endpoint uris to parameter maps and back using the
// component schemas it knows. Implementations must be safe for concurrent use.
type RuntimeCatalog interface {
	// EndpointProperties 解析uri得到全部参数，路径参数在前，query参数按uri中出现的顺序
	EndpointProperties(uri string) (*Properties, error)
	// EndpointLenientProperties 解析uri中不属于组件参数定义的宽松参数
	EndpointLenientProperties(uri string) (map[string]string, error)
	// AsEndpointUri 根据参数组装规范的端点uri
	// encode=false 表示参数值已经是编码过的
	AsEndpointUri(scheme string, properties *Properties, encode bool) (string, error)
}

// SchemaField 组件参数定义
type SchemaField struct {
	// Name 参数名
	Name string `json:"name" yaml:"name"`
	// Kind path 或者 parameter，默认parameter
	Kind string `json:"kind" yaml:"kind"`
	// Type 参数值类型，例如：string,bool,int
	Type string `json:"type" yaml:"type"`
	// Required 是否必填
	Required bool `json:"required" yaml:"required"`
	// Default 默认值
	Default string `json:"default,omitempty" yaml:"default,omitempty"`
	// Desc 描述
	Desc string `json:"desc,omitempty" yaml:"desc,omitempty"`
}

// IsPath 是否是路径参数
func (f SchemaField) IsPath() bool {
	return f.Kind == FieldKindPath
}

// ComponentSchema 组件端点uri语法以及参数定义
type ComponentSchema struct {
	// Scheme 例如：http
	Scheme string `json:"scheme" yaml:"scheme"`
	// Syntax uri语法，例如：http://httpUri 、 direct:name
	Syntax string `json:"syntax" yaml:"syntax"`
	// Title 标题
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	// Lenient 是否允许不在参数定义里的query参数
	Lenient bool `json:"lenient" yaml:"lenient"`
	// Fields 参数定义
	Fields []SchemaField `json:"fields" yaml:"fields"`
}

// Field 获取参数定义
func (s ComponentSchema) Field(name string) (SchemaField, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return SchemaField{}, false
}

// HasParameter 是否定义了该query参数
func (s ComponentSchema) HasParameter(name string) bool {
	f, ok := s.Field(name)
	return ok && !f.IsPath()
}
