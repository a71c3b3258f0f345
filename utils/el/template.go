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

// Package el 模板表达式，${...} 中的内容使用expr表达式计算
package el

import (
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"
	"github.com/rulego/dynroute/utils/str"
)

// Template 模板，编译后可以被并发执行
type Template interface {
	Execute(data map[string]any) (interface{}, error)
	ExecuteAsString(data map[string]any) (string, error)
	// HasVar 是否有变量
	HasVar() bool
}

// NewTemplate 创建模板
// 整个字符串是一个 ${...} 表达式时返回 ExprTemplate，保留表达式结果的类型
// 包含 ${...} 时返回 MixedTemplate，否则原样输出
func NewTemplate(tmpl string) (Template, error) {
	trimV := strings.TrimSpace(tmpl)
	if strings.HasPrefix(trimV, str.VarPrefix) && strings.HasSuffix(trimV, str.VarSuffix) &&
		strings.Count(trimV, str.VarPrefix) == 1 {
		return NewExprTemplate(trimV[len(str.VarPrefix) : len(trimV)-len(str.VarSuffix)])
	} else if str.CheckHasVar(tmpl) {
		return NewMixedTemplate(tmpl)
	}
	return &NotTemplate{Tmpl: tmpl}, nil
}

func compile(expression string) (*vm.Program, error) {
	program, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, errors.Wrapf(err, "compile expression %s", expression)
	}
	return program, nil
}

// ExprTemplate 单个expr表达式
type ExprTemplate struct {
	Tmpl    string
	program *vm.Program
}

func NewExprTemplate(expression string) (*ExprTemplate, error) {
	program, err := compile(strings.TrimSpace(expression))
	if err != nil {
		return nil, err
	}
	return &ExprTemplate{Tmpl: expression, program: program}, nil
}

func (t *ExprTemplate) Execute(data map[string]any) (interface{}, error) {
	return expr.Run(t.program, data)
}

func (t *ExprTemplate) ExecuteAsString(data map[string]any) (string, error) {
	val, err := t.Execute(data)
	if err != nil {
		return "", err
	}
	return str.ToString(val), nil
}

func (t *ExprTemplate) HasVar() bool {
	return true
}

// NotTemplate 原样输出
type NotTemplate struct {
	Tmpl string
}

func (t *NotTemplate) Execute(data map[string]any) (interface{}, error) {
	return t.Tmpl, nil
}

func (t *NotTemplate) ExecuteAsString(data map[string]any) (string, error) {
	return t.Tmpl, nil
}

func (t *NotTemplate) HasVar() bool {
	return false
}

// segment 模板片段，program为nil表示普通文本
type segment struct {
	text    string
	program *vm.Program
}

// MixedTemplate 支持混合字符串和变量的模板，格式如 aa/${xxx}
// 没有闭合的 ${ 按普通文本处理
type MixedTemplate struct {
	Tmpl     string
	segments []segment
	hasVars  bool
}

func NewMixedTemplate(tmpl string) (*MixedTemplate, error) {
	t := &MixedTemplate{Tmpl: tmpl}
	rest := tmpl
	for {
		start := strings.Index(rest, str.VarPrefix)
		if start < 0 {
			break
		}
		end := strings.Index(rest[start:], str.VarSuffix)
		if end < 0 {
			break
		}
		end += start
		if start > 0 {
			t.segments = append(t.segments, segment{text: rest[:start]})
		}
		expression := strings.TrimSpace(rest[start+len(str.VarPrefix) : end])
		program, err := compile(expression)
		if err != nil {
			return nil, err
		}
		t.segments = append(t.segments, segment{text: expression, program: program})
		t.hasVars = true
		rest = rest[end+len(str.VarSuffix):]
	}
	if rest != "" {
		t.segments = append(t.segments, segment{text: rest})
	}
	return t, nil
}

func (t *MixedTemplate) Execute(data map[string]any) (interface{}, error) {
	return t.ExecuteAsString(data)
}

// ExecuteAsString 执行模板，变量值为nil时替换为空字符串
func (t *MixedTemplate) ExecuteAsString(data map[string]any) (string, error) {
	if !t.hasVars {
		return t.Tmpl, nil
	}
	var sb strings.Builder
	for _, seg := range t.segments {
		if seg.program == nil {
			sb.WriteString(seg.text)
			continue
		}
		val, err := expr.Run(seg.program, data)
		if err != nil {
			return "", errors.Wrapf(err, "evaluate ${%s}", seg.text)
		}
		sb.WriteString(str.ToString(val))
	}
	return sb.String(), nil
}

func (t *MixedTemplate) HasVar() bool {
	return t.hasVars
}
