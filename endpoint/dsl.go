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

package endpoint

import (
	"github.com/pkg/errors"
	"github.com/rulego/dynroute/builtin/processor"
	"gopkg.in/yaml.v3"
)

// StepDefinition 路由步骤定义，process、to、toD 只能设置一个
type StepDefinition struct {
	//Process 内置处理器名称，见 processor.Builtins
	Process string `json:"process,omitempty" yaml:"process,omitempty" mapstructure:"process"`
	//To 静态目标端点
	To string `json:"to,omitempty" yaml:"to,omitempty" mapstructure:"to"`
	//ToD 动态目标端点
	ToD string `json:"toD,omitempty" yaml:"toD,omitempty" mapstructure:"toD"`
}

// RouteDefinition 路由定义
//
//	routes:
//	  - id: drinks
//	    from: rest:get:/drinks/:drink
//	    steps:
//	      - toD: http://localhost:8080/bar?throwExceptionOnFailure=false&drink=${drink}
//	      - to: log:drinks
type RouteDefinition struct {
	Id    string           `json:"id" yaml:"id" mapstructure:"id"`
	From  string           `json:"from" yaml:"from" mapstructure:"from"`
	Steps []StepDefinition `json:"steps" yaml:"steps" mapstructure:"steps"`
}

// Router 把路由定义转换成路由
func (d RouteDefinition) Router() (*Router, error) {
	if d.From == "" {
		return nil, errors.Errorf("route %s: from can not be empty", d.Id)
	}
	from := NewRouter().WithId(d.Id).From(d.From)
	for i, step := range d.Steps {
		count := 0
		for _, v := range []string{step.Process, step.To, step.ToD} {
			if v != "" {
				count++
			}
		}
		if count != 1 {
			return nil, errors.Errorf("route %s: step %d must set exactly one of process, to, toD", d.Id, i)
		}
		switch {
		case step.Process != "":
			p, ok := processor.Builtins.Get(step.Process)
			if !ok {
				return nil, errors.Errorf("route %s: processor not found. name=%s", d.Id, step.Process)
			}
			from.Process(p)
		case step.To != "":
			from.To(step.To)
		default:
			from.ToD(step.ToD)
		}
	}
	return from.End(), nil
}

// RoutesFile 路由定义文件格式
type RoutesFile struct {
	Routes []RouteDefinition `json:"routes" yaml:"routes" mapstructure:"routes"`
}

// ParseRoutes 解析yaml或者json格式的路由定义
func ParseRoutes(data []byte) ([]RouteDefinition, error) {
	var file RoutesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "parse routes")
	}
	return file.Routes, nil
}
