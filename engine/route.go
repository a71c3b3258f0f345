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

	"github.com/gofrs/uuid/v5"
	"github.com/pkg/errors"
	"github.com/rulego/dynroute/api/types"
	"github.com/rulego/dynroute/builtin/processor"
	"github.com/rulego/dynroute/endpoint"
)

// route 编译后的路由
type route struct {
	id       string
	router   *endpoint.Router
	consumer types.ConsumerEndpoint
	handler  types.Process
	//pinned To步骤使用的常驻端点
	pinned []string
}

// AddRouter 编译并加入路由，返回路由ID
// From端点和To端点作为常驻端点保存在注册表中，不会被淘汰。加入失败时释放本次引用的端点
func (c *Context) AddRouter(router *endpoint.Router) (string, error) {
	if router == nil || router.FromToString() == "" {
		return "", errors.New("router from can not be empty")
	}
	id := router.Id()
	if id == "" {
		id = uuid.Must(uuid.NewV4()).String()
	}
	if err := c.reserveRoute(id); err != nil {
		return "", err
	}
	var pinned []string
	added := false
	defer func() {
		if added {
			return
		}
		for _, uri := range pinned {
			c.endpoints.release(uri)
		}
		c.lock.Lock()
		delete(c.pending, id)
		c.lock.Unlock()
	}()

	handler, steps, err := c.compile(id, router.GetFrom().GetSteps())
	pinned = append(pinned, steps...)
	if err != nil {
		return "", err
	}
	fromUri := router.FromToString()
	ep, err := c.getEndpoint(fromUri, true)
	if err != nil {
		return "", errors.Wrapf(err, "route %s", id)
	}
	pinned = append(pinned, fromUri)
	consumer, ok := ep.(types.ConsumerEndpoint)
	if !ok {
		return "", errors.Wrapf(types.ErrNotConsumer, "route %s from %s", id, fromUri)
	}
	if err := consumer.Consume(handler); err != nil {
		return "", errors.Wrapf(err, "route %s", id)
	}

	r := &route{id: id, router: router, consumer: consumer, handler: handler, pinned: steps}
	c.lock.Lock()
	delete(c.pending, id)
	c.routes[id] = r
	c.routeIds = append(c.routeIds, id)
	started := c.started
	c.lock.Unlock()
	added = true

	if started {
		if err := consumer.Start(); err != nil {
			return id, errors.Wrapf(err, "start route %s", id)
		}
	}
	c.debugf("added route %s from %s", id, fromUri)
	return id, nil
}

// reserveRoute 占用路由ID，同一个ID同时只能有一个路由在加入
func (c *Context) reserveRoute(id string) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if _, exists := c.routes[id]; exists {
		return errors.Errorf("the router already exists. id=%s", id)
	}
	if _, exists := c.pending[id]; exists {
		return errors.Errorf("the router already exists. id=%s", id)
	}
	c.pending[id] = struct{}{}
	return nil
}

// compile 把路由步骤编译成处理器链，返回To步骤引用的常驻端点
// 返回错误时已经引用的端点也会返回，由调用者释放
func (c *Context) compile(id string, steps []endpoint.Step) (types.Process, []string, error) {
	var processes []types.Process
	var pinned []string
	for i, step := range steps {
		switch step.Kind {
		case endpoint.StepProcess:
			if step.Process == nil {
				return nil, pinned, errors.Errorf("route %s: step %d process can not be nil", id, i)
			}
			processes = append(processes, step.Process)
		case endpoint.StepTo:
			ep, err := c.getEndpoint(step.Uri, true)
			if err != nil {
				return nil, pinned, errors.Wrapf(err, "route %s: step %d", id, i)
			}
			pinned = append(pinned, step.Uri)
			processes = append(processes, sendTo(ep))
		case endpoint.StepToD:
			p, err := NewSendDynamicProcessor(c, step.Uri)
			if err != nil {
				return nil, pinned, errors.Wrapf(err, "route %s: step %d", id, i)
			}
			processes = append(processes, p.Process)
		default:
			return nil, pinned, errors.Errorf("route %s: step %d unknown kind %s", id, i, step.Kind)
		}
	}
	if handler := processor.Pipeline(processes...); handler != nil {
		return handler, pinned, nil
	}
	return func(exchange *types.Exchange) bool {
		return true
	}, pinned, nil
}

func sendTo(ep types.Endpoint) types.Process {
	return func(exchange *types.Exchange) bool {
		if err := send(ep, exchange); err != nil {
			exchange.Err = err
			return false
		}
		return true
	}
}

// RemoveRouter 删除路由，销毁路由的输入端点并释放To步骤引用的端点
func (c *Context) RemoveRouter(id string) error {
	c.lock.Lock()
	r, ok := c.routes[id]
	if !ok {
		c.lock.Unlock()
		return errors.Errorf("router not found. id=%s", id)
	}
	delete(c.routes, id)
	for i, v := range c.routeIds {
		if v == id {
			c.routeIds = append(c.routeIds[:i], c.routeIds[i+1:]...)
			break
		}
	}
	c.lock.Unlock()

	c.endpoints.remove(r.consumer.Uri())
	for _, uri := range r.pinned {
		c.endpoints.release(uri)
	}
	return nil
}

// Routes 全部路由ID，按字母排序
func (c *Context) Routes() []string {
	c.lock.RLock()
	defer c.lock.RUnlock()
	ids := append([]string(nil), c.routeIds...)
	sort.Strings(ids)
	return ids
}

// routeList 按加入顺序返回路由，调用者持有锁
func (c *Context) routeList() []*route {
	var list = make([]*route, 0, len(c.routeIds))
	for _, id := range c.routeIds {
		list = append(list, c.routes[id])
	}
	return list
}
