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

// Properties 有序的端点配置参数，保留插入顺序
// Properties is an insertion-ordered string map of endpoint parameters.
// Re-setting an existing key keeps its original position. The zero value is ready to use.
// Properties is not safe for concurrent mutation.
type Properties struct {
	keys   []string
	values map[string]string
}

// NewProperties 创建有序参数，pairs 按 key,value 依次传入
func NewProperties(pairs ...string) *Properties {
	p := &Properties{}
	for i := 0; i+1 < len(pairs); i += 2 {
		p.Set(pairs[i], pairs[i+1])
	}
	return p
}

// Set 设置值
func (p *Properties) Set(key, value string) {
	if p.values == nil {
		p.values = make(map[string]string)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get 获取值
func (p *Properties) Get(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p.values[key]
	return v, ok
}

// GetValue 获取值，不存在返回空字符串
func (p *Properties) GetValue(key string) string {
	v, _ := p.Get(key)
	return v
}

// Has 是否存在某个key
func (p *Properties) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Delete 删除key
func (p *Properties) Delete(key string) {
	if p == nil {
		return
	}
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i:i], p.keys[i+1:]...)
			break
		}
	}
}

// Keys 按插入顺序返回所有key
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	keys := make([]string, len(p.keys))
	copy(keys, p.keys)
	return keys
}

// Len 参数数量
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Range 按插入顺序遍历，f 返回false停止遍历
func (p *Properties) Range(f func(key, value string) bool) {
	if p == nil {
		return
	}
	for _, k := range p.keys {
		if !f(k, p.values[k]) {
			return
		}
	}
}

// Copy 复制
func (p *Properties) Copy() *Properties {
	c := &Properties{}
	p.Range(func(key, value string) bool {
		c.Set(key, value)
		return true
	})
	return c
}

// ToMap 转换成无序map
func (p *Properties) ToMap() map[string]string {
	m := make(map[string]string, p.Len())
	p.Range(func(key, value string) bool {
		m[key] = value
		return true
	})
	return m
}
