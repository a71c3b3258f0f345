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

package catalog

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rulego/dynroute/api/types"
	"gopkg.in/yaml.v3"
)

// SchemaFile 组件参数定义文件格式
//
//	components:
//	  - scheme: http
//	    syntax: http://httpUri
//	    lenient: true
//	    fields:
//	      - name: httpUri
//	        kind: path
//	        required: true
type SchemaFile struct {
	Components []types.ComponentSchema `yaml:"components"`
}

// ParseSchemas 解析yaml格式的组件参数定义
func ParseSchemas(data []byte) ([]types.ComponentSchema, error) {
	var file SchemaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "parse component schemas")
	}
	for i := range file.Components {
		for j := range file.Components[i].Fields {
			if file.Components[i].Fields[j].Kind == "" {
				file.Components[i].Fields[j].Kind = types.FieldKindParameter
			}
		}
	}
	return file.Components, nil
}

// LoadYAML 从yaml内容加载并注册组件参数定义
func (c *Catalog) LoadYAML(data []byte) error {
	schemas, err := ParseSchemas(data)
	if err != nil {
		return err
	}
	return c.Register(schemas...)
}

// LoadFile 从yaml文件加载并注册组件参数定义
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read schema file %s", path)
	}
	return c.LoadYAML(data)
}
