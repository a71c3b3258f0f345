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
	"bytes"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rulego/dynroute/api/types"
	"golang.org/x/net/proxy"
)

// Options http端点参数，从端点uri的query参数解析
type Options struct {
	//HttpMethod 请求方法，为空时：没有消息体使用GET，否则POST
	HttpMethod string
	//ThrowExceptionOnFailure 响应状态码>=300时是否返回错误，默认true
	ThrowExceptionOnFailure bool
	//ConnectTimeout 连接超时，单位毫秒，0:不限制
	ConnectTimeout int
	//ReadTimeoutMs 超时，单位毫秒，0:不限制
	ReadTimeoutMs int
	//禁用证书验证
	InsecureSkipVerify bool
	//MaxParallelRequestsCount 连接池大小，0代表不限制
	MaxParallelRequestsCount int
	//UseSystemProxyProperties 使用系统配置代理
	UseSystemProxyProperties bool
	//ProxyScheme 代理协议 http、https、socks5
	ProxyScheme string
	//ProxyHost 代理主机
	ProxyHost string
	//ProxyPort 代理端口
	ProxyPort int
	//ProxyUser 代理用户名
	ProxyUser string
	//ProxyPassword 代理密码
	ProxyPassword string
}

// DefaultOptions 默认参数
func DefaultOptions() Options {
	return Options{
		ThrowExceptionOnFailure:  true,
		ReadTimeoutMs:            2000,
		MaxParallelRequestsCount: 200,
	}
}

// Producer http生产者端点，把消息发送到 baseUrl + httpPath + ?httpQuery
// 多个消息可以并发发送
type Producer struct {
	uri     string
	options Options
	//baseUrl 不包含query的目标地址
	baseUrl *url.URL
	//query 创建端点时uri中的宽松参数
	query      string
	httpClient *http.Client
}

// Ensure that Producer implements the types.Endpoint interface.
var _ types.Endpoint = (*Producer)(nil)

// NewProducer 创建http生产者端点
// target 为完整的请求地址，例如：http://localhost:8080/api
func NewProducer(uri string, target string, query string, options Options) (*Producer, error) {
	baseUrl, err := url.Parse(target)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid http endpoint %s", uri)
	}
	if baseUrl.Host == "" {
		return nil, errors.Errorf("invalid http endpoint %s: missing host", uri)
	}
	options.HttpMethod = strings.ToUpper(options.HttpMethod)
	return &Producer{
		uri:        uri,
		options:    options,
		baseUrl:    baseUrl,
		query:      query,
		httpClient: NewHttpClient(options),
	}, nil
}

func (p *Producer) Uri() string {
	return p.uri
}

// Options 端点参数
func (p *Producer) Options() Options {
	return p.options
}

// Send 发送请求，响应写入 exchange.Out
func (p *Producer) Send(exchange *types.Exchange) error {
	msg := exchange.In
	target := p.requestUrl(msg.Metadata)

	method := p.options.HttpMethod
	var body io.Reader
	if msg.Data != "" {
		body = bytes.NewReader([]byte(msg.Data))
		if method == "" {
			method = http.MethodPost
		}
	} else if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(exchange.GetContext(), method, target, body)
	if err != nil {
		return errors.Wrapf(err, "create request %s %s", method, target)
	}
	if msg.DataType == types.JSON {
		req.Header.Set("Content-Type", "application/json")
	}

	response, err := p.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, target)
	}
	defer response.Body.Close()
	b, err := io.ReadAll(response.Body)
	if err != nil {
		return errors.Wrapf(err, "read response of %s %s", method, target)
	}

	//httpPath、httpQuery 只对本次请求有效
	metadata := msg.Metadata.Copy()
	delete(metadata, types.HttpPathKey)
	delete(metadata, types.HttpQueryKey)
	out := types.NewMsg(0, msg.Type, types.TEXT, metadata, string(b))
	out.Metadata.PutValue(types.StatusKey, response.Status)
	out.Metadata.PutValue(types.StatusCodeKey, strconv.Itoa(response.StatusCode))
	exchange.Out = &out

	if response.StatusCode >= http.StatusMultipleChoices && p.options.ThrowExceptionOnFailure {
		return errors.Wrapf(types.ErrHttpOperationFailed, "%s %s returned %s: %s", method, target, response.Status, string(b))
	}
	return nil
}

// requestUrl 计算请求地址
// httpPath 拼接到端点路径后面，已经包含端点路径的不重复拼接
// httpQuery 替换端点自带的query
func (p *Producer) requestUrl(metadata types.Metadata) string {
	u := *p.baseUrl
	if path := metadata.GetValue(types.HttpPathKey); path != "" {
		basePath := strings.TrimSuffix(p.baseUrl.EscapedPath(), "/")
		if basePath != "" && (path == basePath || strings.HasPrefix(path, basePath+"/")) {
			basePath = ""
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		joined := basePath + path
		u.Path, u.RawPath = joined, joined
		if unescaped, err := url.PathUnescape(joined); err == nil {
			u.Path = unescaped
		}
	}
	if query := metadata.GetValue(types.HttpQueryKey); query != "" {
		u.RawQuery = query
	} else {
		u.RawQuery = p.query
	}
	return u.String()
}

func (p *Producer) Destroy() {
	p.httpClient.CloseIdleConnections()
}

// NewHttpClient 创建http客户端
func NewHttpClient(options Options) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: options.InsecureSkipVerify}
	transport.MaxConnsPerHost = options.MaxParallelRequestsCount
	dialer := &net.Dialer{
		Timeout:   time.Duration(options.ConnectTimeout) * time.Millisecond,
		KeepAlive: 30 * time.Second,
	}
	transport.DialContext = dialer.DialContext

	if options.UseSystemProxyProperties {
		if proxyURL := GetSystemProxy(); proxyURL != nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	} else if proxyURL := BuildProxyURL(options.ProxyScheme, options.ProxyHost, options.ProxyPort, options.ProxyUser, options.ProxyPassword); proxyURL != nil {
		if options.ProxyScheme == "socks5" {
			transport.Proxy = nil
			transport.DialContext = nil
			transport.Dial = CreateSOCKS5Dialer(proxyURL, dialer)
		} else {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	return &http.Client{Transport: transport,
		Timeout: time.Duration(options.ReadTimeoutMs) * time.Millisecond}
}

// GetSystemProxy 获取系统代理设置
func GetSystemProxy() *url.URL {
	for _, env := range []string{"HTTP_PROXY", "http_proxy", "HTTPS_PROXY", "https_proxy"} {
		if proxyStr := os.Getenv(env); proxyStr != "" {
			if proxyURL, err := url.Parse(proxyStr); err == nil {
				return proxyURL
			}
		}
	}
	return nil
}

// BuildProxyURL 构建代理URL，参数不完整返回nil
func BuildProxyURL(scheme, host string, port int, user, password string) *url.URL {
	if scheme == "" || host == "" || port == 0 {
		return nil
	}
	proxyURL := &url.URL{Scheme: scheme, Host: net.JoinHostPort(host, strconv.Itoa(port))}
	if user != "" {
		proxyURL.User = url.UserPassword(user, password)
	}
	return proxyURL
}

// CreateSOCKS5Dialer 创建SOCKS5拨号器
func CreateSOCKS5Dialer(proxyURL *url.URL, forward proxy.Dialer) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		var auth *proxy.Auth
		if proxyURL.User != nil {
			password, _ := proxyURL.User.Password()
			auth = &proxy.Auth{
				User:     proxyURL.User.Username(),
				Password: password,
			}
		}
		dialer, err := proxy.SOCKS5("tcp", proxyURL.Host, auth, forward)
		if err != nil {
			return nil, errors.Wrapf(err, "socks5 proxy %s", proxyURL.Host)
		}
		return dialer.Dial(network, addr)
	}
}
