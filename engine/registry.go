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

package engine

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/rulego/dynroute/api/types"
	"github.com/rulego/dynroute/components/direct"
	httpComponent "github.com/rulego/dynroute/components/http"
	"github.com/rulego/dynroute/components/log"
	"github.com/rulego/dynroute/components/rest"
	"github.com/rulego/dynroute/components/schedule"
)

// Registry 默认组件注册表，NewContext 会为每个路由上下文创建注册组件的新实例
var Registry = new(ComponentRegistry)

func init() {
	_ = Registry.Register(&httpComponent.Component{})
	_ = Registry.Register(&direct.Component{})
	_ = Registry.Register(&rest.Component{})
	_ = Registry.Register(&schedule.Component{})
	_ = Registry.Register(&log.Component{})
}

// ComponentRegistry 组件注册表，按组件类型保存组件原型
type ComponentRegistry struct {
	components map[string]types.Component
	sync.RWMutex
}

// Register 注册组件，组件类型已经存在返回错误
func (r *ComponentRegistry) Register(component types.Component) error {
	r.Lock()
	defer r.Unlock()
	if r.components == nil {
		r.components = make(map[string]types.Component)
	}
	if _, ok := r.components[component.Type()]; ok {
		return errors.New("the component already exists. type=" + component.Type())
	}
	r.components[component.Type()] = component
	return nil
}

// Unregister 删除组件
func (r *ComponentRegistry) Unregister(componentType string) error {
	r.Lock()
	defer r.Unlock()
	if _, ok := r.components[componentType]; !ok {
		return errors.Wrapf(types.ErrComponentNotFound, "type=%s", componentType)
	}
	delete(r.components, componentType)
	return nil
}

// Get 获取组件原型
func (r *ComponentRegistry) Get(componentType string) (types.Component, bool) {
	r.RLock()
	defer r.RUnlock()
	c, ok := r.components[componentType]
	return c, ok
}

// Components 按组件类型排序的全部组件原型
func (r *ComponentRegistry) Components() []types.Component {
	r.RLock()
	defer r.RUnlock()
	var list = make([]types.Component, 0, len(r.components))
	for _, c := range r.components {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Type() < list[j].Type()
	})
	return list
}
