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
	"net/url"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const (
	prefixOpaque       = ":"
	prefixHierarchical = "://"
)

// syntax 解析后的uri语法
type syntax struct {
	//scheme后面的分隔符 ":" 或者 "://"
	prefix string
	//路径参数名
	names []string
	//delims[i] 是 names[i] 和 names[i+1] 之间的分隔符
	delims []byte
}

func parseSyntax(scheme, s string) (syntax, error) {
	if s == "" {
		return syntax{prefix: prefixOpaque}, nil
	}
	if !strings.HasPrefix(s, scheme+":") {
		return syntax{}, errors.Errorf("syntax %s must start with %s:", s, scheme)
	}
	rest := s[len(scheme):]
	result := syntax{prefix: prefixOpaque}
	if strings.HasPrefix(rest, prefixHierarchical) {
		result.prefix = prefixHierarchical
	}
	rest = rest[len(result.prefix):]
	start := 0
	for i := 0; i < len(rest); i++ {
		if c := rest[i]; c == ':' || c == '/' {
			if i == start {
				return syntax{}, errors.Errorf("syntax %s has an empty path parameter", s)
			}
			result.names = append(result.names, rest[start:i])
			result.delims = append(result.delims, c)
			start = i + 1
		}
	}
	if start == len(rest) {
		if len(result.names) > 0 {
			return syntax{}, errors.Errorf("syntax %s has an empty path parameter", s)
		}
		return result, nil
	}
	result.names = append(result.names, rest[start:])
	return result, nil
}

// trimPrefix 去掉 scheme: 之后多余的 //
func (s syntax) trimPrefix(remaining string) string {
	if s.prefix == prefixHierarchical {
		return strings.TrimPrefix(remaining, "//")
	}
	return remaining
}

// split 按语法拆分路径，最后一个路径参数获取剩余全部内容
func (s syntax) split(path string) ([]string, error) {
	values := make([]string, len(s.names))
	if len(s.names) == 0 {
		if path != "" {
			return nil, errors.Errorf("unexpected path %s", path)
		}
		return values, nil
	}
	rem := path
	last := len(s.names) - 1
	for i := 0; i < last; i++ {
		idx := strings.IndexByte(rem, s.delims[i])
		if idx < 0 {
			values[i] = rem
			return values, nil
		}
		values[i] = rem[:idx]
		rem = rem[idx+1:]
	}
	values[last] = rem
	return values, nil
}

// join 按语法拼接路径参数，忽略末尾的空参数
func (s syntax) join(values []string) string {
	n := len(values)
	for n > 0 && values[n-1] == "" {
		n--
	}
	var sb strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(s.delims[i-1])
		}
		sb.WriteString(values[i])
	}
	return sb.String()
}

func (s syntax) isPathName(name string) bool {
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}

// SplitScheme 拆分scheme和剩余部分，例如：http://host/a -> http, //host/a
func SplitScheme(uri string) (scheme string, remaining string, ok bool) {
	idx := strings.IndexByte(uri, ':')
	if idx <= 0 {
		return "", "", false
	}
	scheme = uri[:idx]
	if strings.ContainsAny(scheme, "/?#&= ") {
		return "", "", false
	}
	return scheme, uri[idx+1:], true
}

func cutQuery(s string) (string, string) {
	path, query, _ := strings.Cut(s, "?")
	return path, query
}

// parseQuery 按出现顺序解析query参数，值统一为编码后的形式
func parseQuery(query string) [][2]string {
	var result [][2]string
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		result = append(result, [2]string{key, canonicalValue(value)})
	}
	return result
}

// canonicalValue 先解码再编码，保证同一个值只有一种写法。无法解码的值保持原样
func canonicalValue(v string) string {
	if decoded, err := url.QueryUnescape(v); err == nil {
		return url.QueryEscape(decoded)
	}
	return v
}

// EncodeValue 编码参数值
func EncodeValue(v string) string {
	return url.QueryEscape(v)
}

// DecodeValue 解码参数值，无法解码时返回原值
func DecodeValue(v string) string {
	if decoded, err := url.QueryUnescape(v); err == nil {
		return decoded
	}
	return v
}

// CreateQueryString 按key排序生成query字符串
// encode=false 表示参数值已经是编码过的
func CreateQueryString(params map[string]string, encode bool) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		if encode {
			sb.WriteString(EncodeValue(params[k]))
		} else {
			sb.WriteString(params[k])
		}
	}
	return sb.String()
}
