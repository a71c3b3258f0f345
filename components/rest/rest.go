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

// Package rest provides the rest component: http routes served by one shared
// httprouter server per routing context.
//
// Example:
//
//	rest:get:/api/users/:id
//	rest:post:/api/msg
//
// Path parameters and query parameters are copied to the message metadata, the
// request body becomes the message data, and the data of the message at the end
// of the route is written back as the response body.
package rest

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/rulego/dynroute/api/types"
)

const (
	Type = "rest"
	// DefaultAddr 默认监听地址
	DefaultAddr = ":9090"

	ContentTypeKey  = "Content-Type"
	JsonContextType = "application/json"
)

var schema = types.ComponentSchema{
	Scheme: Type,
	Syntax: "rest:method:path",
	Title:  "REST",
	Fields: []types.SchemaField{
		{Name: "method", Kind: types.FieldKindPath, Type: "string", Required: true, Desc: "GET,POST,PUT,DELETE..."},
		{Name: "path", Kind: types.FieldKindPath, Type: "string", Required: true, Desc: "httprouter path, for example /users/:id"},
	},
}

var methods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodOptions: {},
}

// Ensure that Component implements the types.Component and types.Lifecycle interfaces.
var (
	_ types.Component = (*Component)(nil)
	_ types.Lifecycle = (*Component)(nil)
)

// Component rest组件，所有rest端点共用一个http服务
type Component struct {
	// Addr 监听地址，默认 :9090
	Addr string

	router   *httprouter.Router
	server   *http.Server
	listener net.Listener
	logger   types.Logger
	lock     sync.Mutex
}

func (c *Component) Type() string {
	return Type
}

func (c *Component) New() types.Component {
	return &Component{Addr: c.Addr}
}

func (c *Component) Schemes() []string {
	return []string{Type}
}

func (c *Component) Schemas() []types.ComponentSchema {
	return []types.ComponentSchema{schema}
}

func (c *Component) CreateEndpoint(config types.Config, uri string, properties *types.Properties, lenient map[string]string) (types.Endpoint, error) {
	method := strings.ToUpper(properties.GetValue("method"))
	if _, ok := methods[method]; !ok {
		return nil, errors.Errorf("invalid rest endpoint %s: unsupported method %s", uri, method)
	}
	path := properties.GetValue("path")
	if !strings.HasPrefix(path, "/") {
		return nil, errors.Errorf("invalid rest endpoint %s: path must begin with '/'", uri)
	}
	c.lock.Lock()
	if c.logger == nil {
		c.logger = config.Logger
	}
	c.lock.Unlock()
	return &Endpoint{uri: uri, method: method, path: path, component: c}, nil
}

// ListenAddr 实际监听的地址，服务未启动返回空
func (c *Component) ListenAddr() string {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.listener == nil {
		return ""
	}
	return c.listener.Addr().String()
}

// handle 注册路由，路由冲突时httprouter会panic，这里转换成错误
func (c *Component) handle(method, path string, handle httprouter.Handle) (err error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.router == nil {
		c.router = httprouter.New()
	}
	defer func() {
		if e := recover(); e != nil {
			err = errors.Errorf("add rest router %s %s error: %v", method, path, e)
		}
	}()
	c.router.Handle(method, path, handle)
	return nil
}

// Start 启动http服务，已经启动或者没有路由时不做处理
func (c *Component) Start() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.server != nil || c.router == nil {
		return nil
	}
	addr := c.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", addr)
	}
	c.listener = ln
	c.server = &http.Server{Handler: c.router, ReadHeaderTimeout: 10 * time.Second}
	c.printf("starting rest server on %s", ln.Addr().String())
	go func(server *http.Server) {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			c.printf("rest server stopped with error: %v", err)
		}
	}(c.server)
	return nil
}

// Stop 停止http服务
func (c *Component) Stop() {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = c.server.Shutdown(ctx)
	c.server = nil
	c.listener = nil
}

func (c *Component) printf(format string, v ...interface{}) {
	if c.logger != nil {
		c.logger.Printf(format, v...)
	}
}

// Ensure that Endpoint implements the types.ConsumerEndpoint interface.
var _ types.ConsumerEndpoint = (*Endpoint)(nil)

// Endpoint rest端点，只能作为路由输入
type Endpoint struct {
	uri       string
	method    string
	path      string
	component *Component
}

func (e *Endpoint) Uri() string {
	return e.uri
}

func (e *Endpoint) Send(exchange *types.Exchange) error {
	return errors.Errorf("rest endpoint %s can only be used as a route input", e.uri)
}

func (e *Endpoint) Consume(handler types.Process) error {
	return e.component.handle(e.method, e.path, e.handler(handler))
}

func (e *Endpoint) Start() error {
	return e.component.Start()
}

// Destroy 共用的http服务由组件关闭
func (e *Endpoint) Destroy() {
}

func (e *Endpoint) handler(process types.Process) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		defer func() {
			//捕捉异常
			if err := recover(); err != nil {
				e.component.printf("rest handler err :%v", err)
				http.Error(w, fmt.Sprintf("%v", err), http.StatusInternalServerError)
			}
		}()
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		dataType := types.TEXT
		if strings.HasPrefix(r.Header.Get(ContentTypeKey), JsonContextType) {
			dataType = types.JSON
		}
		metadata := types.NewMetadata()
		for key, values := range r.URL.Query() {
			if len(values) > 0 {
				metadata.PutValue(key, values[0])
			}
		}
		//把路径参数放到msg元数据中
		for _, param := range params {
			metadata.PutValue(param.Key, param.Value)
		}
		msg := types.NewMsg(0, r.Method+" "+e.path, dataType, metadata, string(body))
		exchange := types.NewExchange(r.Context(), msg)

		if !process(exchange) && exchange.Err != nil {
			http.Error(w, exchange.Err.Error(), http.StatusInternalServerError)
			return
		}
		result := exchange.Message()
		if result.DataType == types.JSON {
			w.Header().Set(ContentTypeKey, JsonContextType)
		}
		_, _ = w.Write([]byte(result.Data))
	}
}
