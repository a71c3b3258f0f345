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
	"strings"

	"github.com/rulego/dynroute/api/types"
)

// StepKind 路由步骤类型
type StepKind int

const (
	// StepProcess 执行处理器
	StepProcess StepKind = iota
	// StepTo 发送到静态端点
	StepTo
	// StepToD 发送到动态端点，uri是模板
	StepToD
)

func (k StepKind) String() string {
	switch k {
	case StepProcess:
		return "process"
	case StepTo:
		return "to"
	case StepToD:
		return "toD"
	}
	return "unknown"
}

// Step 路由步骤
type Step struct {
	Kind StepKind
	//Uri 目标端点，StepTo、StepToD 有效
	Uri string
	//Process 处理器，StepProcess 有效
	Process types.Process
}

// Router 路由，把消息从输入端（From），经过处理（Process）发送到一个或者多个目标端点（To/ToD）
// 用法：
//
//	endpoint.NewRouter().From("direct:start").ToD("http://localhost:8080/${path}").End()
//	endpoint.NewRouter().WithId("orders").From("rest:post:/orders").Process(fn).To("direct:orders").End()
type Router struct {
	id   string
	from *From
}

func NewRouter() *Router {
	return &Router{}
}

// WithId 设置路由ID，为空时由路由上下文生成
func (r *Router) WithId(id string) *Router {
	r.id = id
	return r
}

func (r *Router) Id() string {
	return r.id
}

// From 设置输入端点
func (r *Router) From(uri string) *From {
	r.from = &From{router: r, uri: strings.TrimSpace(uri)}
	return r.from
}

func (r *Router) GetFrom() *From {
	return r.from
}

// FromToString 输入端点uri
func (r *Router) FromToString() string {
	if r.from == nil {
		return ""
	}
	return r.from.uri
}

// From 来源路由，按添加的顺序执行步骤
type From struct {
	router *Router
	uri    string
	steps  []Step
}

func (f *From) ToString() string {
	return f.uri
}

// Process 添加处理器，返回false则停止执行后续步骤
func (f *From) Process(process types.Process) *From {
	f.steps = append(f.steps, Step{Kind: StepProcess, Process: process})
	return f
}

// To 发送到静态端点
func (f *From) To(uri string) *From {
	uri = strings.TrimSpace(uri)
	f.steps = append(f.steps, Step{Kind: StepTo, Uri: uri})
	return f
}

// ToD 发送到动态端点，uri中的 ${...} 使用消息计算，可以使用：
//
//	${msg.xx} 消息负荷字段(JSON)
//	${metadata.xx} 或者 ${xx} 消息元数据
//	${global.xx} 全局配置
func (f *From) ToD(uri string) *From {
	uri = strings.TrimSpace(uri)
	f.steps = append(f.steps, Step{Kind: StepToD, Uri: uri})
	return f
}

// GetSteps 路由步骤
func (f *From) GetSteps() []Step {
	return f.steps
}

func (f *From) End() *Router {
	return f.router
}
