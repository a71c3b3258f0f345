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

package http

import (
	"net"
	"net/url"
	"strings"
)

const (
	SchemeHttp       = "http"
	SchemeHttps      = "https"
	SchemeHttp4      = "http4"
	SchemeHttps4     = "https4"
	SchemeHttpClient = "httpclient"
)

// nativeSchemes uri本身就是 http(s)://host/path 格式的scheme
var nativeSchemes = map[string]string{
	SchemeHttp:   SchemeHttp,
	SchemeHttps:  SchemeHttps,
	SchemeHttp4:  SchemeHttp,
	SchemeHttps4: SchemeHttps,
}

// IsNative 是否是原生http scheme
func IsNative(scheme string) bool {
	_, ok := nativeSchemes[scheme]
	return ok
}

// defaultPort scheme的默认端口，未知scheme返回空
func defaultPort(scheme string) string {
	switch strings.TrimSuffix(strings.ToLower(scheme), "4") {
	case "http", "ws":
		return "80"
	case "https", "wss":
		return "443"
	}
	return ""
}

// decomposeUri 把动态uri拆分成地址和路径两部分，例如：
//
//	http://localhost:8080/bar?x=y -> localhost:8080 , /bar
//	httpclient:http://localhost/a -> http://localhost , /a
//
// 没有路径或者无法解析时 hasPath=false ，authority 为去掉query的uri
func decomposeUri(uri, scheme string) (authority, path string, hasPath bool) {
	u := uri
	if !IsNative(scheme) {
		if strings.HasPrefix(u, scheme+"://") {
			u = u[len(scheme)+3:]
		} else if strings.HasPrefix(u, scheme+":") {
			u = u[len(scheme)+1:]
		}
	}
	if idx := strings.IndexByte(u, '?'); idx > 0 {
		u = u[:idx]
	}

	parsed, err := url.Parse(u)
	if err != nil || parsed.Hostname() == "" {
		return u, "", false
	}
	path = parsed.EscapedPath()
	if path == "" || path == "/" {
		return u, "", false
	}

	host := parsed.Hostname()
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port := parsed.Port(); port != "" && port != defaultPort(parsed.Scheme) {
		host = net.JoinHostPort(parsed.Hostname(), port)
	}
	if !IsNative(scheme) && parsed.Scheme != "" {
		host = parsed.Scheme + "://" + host
	}
	return host, path, true
}
