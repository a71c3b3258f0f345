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

	lru "github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/rulego/dynroute/api/types"
)

// endpointRegistry 端点注册表，key是端点uri
// 路由使用的端点（From、To）是常驻端点，不会被淘汰；
// 其他端点保存在LRU缓存中，超过容量时淘汰最久未使用的端点并销毁。
type endpointRegistry struct {
	lock    sync.Mutex
	static  map[string]types.Endpoint
	dynamic *lru.LRU[string, types.Endpoint]
	//refs 常驻端点的引用计数
	refs map[string]int
	//keep 移出缓存时不销毁端点
	keep bool
}

func newEndpointRegistry(size int) (*endpointRegistry, error) {
	if size <= 0 {
		size = types.DefaultEndpointCacheSize
	}
	r := &endpointRegistry{static: make(map[string]types.Endpoint), refs: make(map[string]int)}
	dynamic, err := lru.NewLRU[string, types.Endpoint](size, r.onEvict)
	if err != nil {
		return nil, err
	}
	r.dynamic = dynamic
	return r, nil
}

func (r *endpointRegistry) onEvict(_ string, endpoint types.Endpoint) {
	if !r.keep {
		endpoint.Destroy()
	}
}

// getOrCreate 获取端点，不存在则调用create创建
// pin=true 端点作为常驻端点并增加引用计数，已经在LRU缓存中的端点会转为常驻，
// 调用者使用完后需要调用 release
func (r *endpointRegistry) getOrCreate(uri string, pin bool, create func() (types.Endpoint, error)) (types.Endpoint, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if endpoint, ok := r.static[uri]; ok {
		if pin {
			r.refs[uri]++
		}
		return endpoint, nil
	}
	if pin {
		if endpoint, ok := r.dynamic.Peek(uri); ok {
			r.keep = true
			r.dynamic.Remove(uri)
			r.keep = false
			r.static[uri] = endpoint
			r.refs[uri] = 1
			return endpoint, nil
		}
	} else if endpoint, ok := r.dynamic.Get(uri); ok {
		return endpoint, nil
	}
	endpoint, err := create()
	if err != nil {
		return nil, err
	}
	if pin {
		r.static[uri] = endpoint
		r.refs[uri] = 1
	} else {
		r.dynamic.Add(uri, endpoint)
	}
	return endpoint, nil
}

func (r *endpointRegistry) has(uri string) bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.static[uri]; ok {
		return true
	}
	return r.dynamic.Contains(uri)
}

// release 减少常驻端点的引用计数，没有引用时删除并销毁端点
func (r *endpointRegistry) release(uri string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	endpoint, ok := r.static[uri]
	if !ok {
		return
	}
	if r.refs[uri]--; r.refs[uri] > 0 {
		return
	}
	delete(r.refs, uri)
	delete(r.static, uri)
	endpoint.Destroy()
}

// remove 删除并销毁端点，忽略引用计数
func (r *endpointRegistry) remove(uri string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if endpoint, ok := r.static[uri]; ok {
		delete(r.refs, uri)
		delete(r.static, uri)
		endpoint.Destroy()
		return
	}
	r.dynamic.Remove(uri)
}

func (r *endpointRegistry) uris() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	var list = make([]string, 0, len(r.static)+r.dynamic.Len())
	for uri := range r.static {
		list = append(list, uri)
	}
	list = append(list, r.dynamic.Keys()...)
	sort.Strings(list)
	return list
}

func (r *endpointRegistry) len() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.static) + r.dynamic.Len()
}

// purge 销毁全部端点
func (r *endpointRegistry) purge() {
	r.lock.Lock()
	defer r.lock.Unlock()
	for uri, endpoint := range r.static {
		endpoint.Destroy()
		delete(r.static, uri)
		delete(r.refs, uri)
	}
	r.dynamic.Purge()
}
