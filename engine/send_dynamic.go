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
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/rulego/dynroute/api/types"
	"github.com/rulego/dynroute/builtin/funcs"
	"github.com/rulego/dynroute/catalog"
	"github.com/rulego/dynroute/utils/el"
)

// GlobalKey 模板中访问全局配置的变量名
const GlobalKey = "global"

// SendDynamicProcessor 发送到动态端点
// 每条消息先计算uri模板，如果scheme有优化器并且可以优化，则发送到优化器计算出来的静态端点，
// uri中变化的部分由前置处理器写入消息元数据；否则按完整uri获取端点。
//
// 模板可以使用的变量：
//
//	${msg.xx}       消息负荷，JSON消息解析为对象
//	${metadata.xx}  消息元数据
//	${xx}           消息元数据
//	${global.xx}    全局配置
//	${escape(xx)}   内置函数，见 funcs.TemplateFunc
type SendDynamicProcessor struct {
	ctx      *Context
	uri      string
	template el.Template
}

// NewSendDynamicProcessor 创建动态发送处理器
func NewSendDynamicProcessor(ctx *Context, uri string) (*SendDynamicProcessor, error) {
	template, err := el.NewTemplate(uri)
	if err != nil {
		return nil, errors.Wrapf(err, "parse dynamic uri %s", uri)
	}
	return &SendDynamicProcessor{ctx: ctx, uri: uri, template: template}, nil
}

// Uri uri模板
func (p *SendDynamicProcessor) Uri() string {
	return p.uri
}

// Process 发送消息，失败时设置 exchange.Err 并返回false
func (p *SendDynamicProcessor) Process(exchange *types.Exchange) bool {
	uri, err := p.template.ExecuteAsString(p.env(exchange.In))
	if err != nil {
		exchange.Err = errors.Wrapf(err, "evaluate dynamic uri %s", p.uri)
		return false
	}
	ep, pre, post, err := p.resolve(strings.TrimSpace(uri))
	if err != nil {
		exchange.Err = err
		return false
	}
	if pre != nil && !pre(exchange) {
		return false
	}
	if err := send(ep, exchange); err != nil {
		exchange.Err = err
		return false
	}
	if post != nil {
		return post(exchange)
	}
	return true
}

// resolve 获取发送的端点以及前置、后置处理器
func (p *SendDynamicProcessor) resolve(uri string) (types.Endpoint, types.Process, types.Process, error) {
	scheme, _, _ := catalog.SplitScheme(uri)
	aware, ok := p.ctx.DynamicAware(scheme)
	if !ok {
		p.ctx.metrics.dynamicSends.WithLabelValues(scheme, ResultUnsupported).Inc()
		ep, err := p.ctx.GetEndpoint(uri)
		return ep, nil, nil, err
	}
	staticUri, pre, post, err := optimize(aware, uri)
	if err != nil {
		p.ctx.debugf("dynamic uri %s is not optimized: %v", uri, err)
	}
	if err != nil || staticUri == "" {
		p.ctx.metrics.dynamicSends.WithLabelValues(scheme, ResultFallback).Inc()
		ep, err := p.ctx.GetEndpoint(uri)
		return ep, nil, nil, err
	}
	p.ctx.metrics.dynamicSends.WithLabelValues(scheme, ResultOptimized).Inc()
	ep, err := p.ctx.GetEndpoint(staticUri)
	return ep, pre, post, err
}

// optimize 执行优化器，staticUri为空表示不需要优化
func optimize(aware types.SendDynamicAware, uri string) (staticUri string, pre types.Process, post types.Process, err error) {
	entry, err := aware.Prepare(uri)
	if err != nil {
		return "", nil, nil, err
	}
	staticUri, ok, err := aware.ResolveStaticUri(entry)
	if err != nil || !ok {
		return "", nil, nil, err
	}
	if pre, err = aware.CreatePreProcessor(entry); err != nil {
		return "", nil, nil, err
	}
	if post, err = aware.CreatePostProcessor(entry); err != nil {
		return "", nil, nil, err
	}
	return staticUri, pre, post, nil
}

// env 模板变量
func (p *SendDynamicProcessor) env(msg *types.RuleMsg) map[string]interface{} {
	var env = make(map[string]interface{}, len(msg.Metadata)+8)
	for k, v := range funcs.TemplateFunc.GetAll() {
		env[k] = v
	}
	for k, v := range msg.Metadata {
		env[k] = v
	}
	var data interface{} = msg.Data
	if msg.DataType == types.JSON {
		var v interface{}
		if err := json.Unmarshal([]byte(msg.Data), &v); err == nil {
			data = v
		}
	}
	env[types.MsgKey] = data
	env[types.MetadataKey] = map[string]string(msg.Metadata)
	env[types.MsgTypeKey] = msg.Type
	env[GlobalKey] = map[string]string(p.ctx.config.Properties)
	return env
}
