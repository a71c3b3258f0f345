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

// Package http provides the HTTP component family: the producer endpoint for the
// http, https, http4, https4 and httpclient schemes and the dynamic destination
// optimizer that lets all dynamic requests to one host share one endpoint.
//
// Example:
//
//	http://localhost:8080/api/users?throwExceptionOnFailure=false&id=1
//	httpclient:https://example.com/api?readTimeoutMs=5000
//
// Query parameters declared by the component configure the endpoint. Other query
// parameters (lenient parameters) are sent as the request query.
package http

import (
	_ "embed"
	"sync"

	"github.com/pkg/errors"
	"github.com/rulego/dynroute/api/types"
	"github.com/rulego/dynroute/catalog"
	"github.com/rulego/dynroute/utils/maps"
)

const Type = "http"

//go:embed schema.yaml
var schemaYAML []byte

var (
	schemasOnce sync.Once
	schemas     []types.ComponentSchema
	schemasErr  error
)

// Schemas http组件参数定义
func Schemas() ([]types.ComponentSchema, error) {
	schemasOnce.Do(func() {
		schemas, schemasErr = catalog.ParseSchemas(schemaYAML)
	})
	return schemas, schemasErr
}

// Ensure that Component implements the types.Component and types.DynamicAwareProvider interfaces.
var (
	_ types.Component            = (*Component)(nil)
	_ types.DynamicAwareProvider = (*Component)(nil)
)

// Component http组件
type Component struct {
	// AuthorityKeys 保存地址的参数名，为空使用 DefaultAuthorityKeys
	AuthorityKeys []string
}

func (c *Component) Type() string {
	return Type
}

func (c *Component) New() types.Component {
	return &Component{AuthorityKeys: c.AuthorityKeys}
}

func (c *Component) Schemes() []string {
	return []string{SchemeHttp, SchemeHttps, SchemeHttp4, SchemeHttps4, SchemeHttpClient}
}

func (c *Component) Schemas() []types.ComponentSchema {
	list, err := Schemas()
	if err != nil {
		panic(err)
	}
	return list
}

// NewSendDynamicAware 为每个scheme创建一个优化器
func (c *Component) NewSendDynamicAware(scheme string, runtimeCatalog types.RuntimeCatalog) types.SendDynamicAware {
	return NewSendDynamicAware(scheme, runtimeCatalog, WithAuthorityKeys(c.AuthorityKeys...))
}

// CreateEndpoint 创建http生产者端点
func (c *Component) CreateEndpoint(config types.Config, uri string, properties *types.Properties, lenient map[string]string) (types.Endpoint, error) {
	scheme, _, ok := catalog.SplitScheme(uri)
	if !ok {
		return nil, errors.Errorf("invalid http endpoint %s", uri)
	}
	authorityKeys := c.AuthorityKeys
	if len(authorityKeys) == 0 {
		authorityKeys = DefaultAuthorityKeys
	}
	var httpUri string
	for _, key := range authorityKeys {
		if v := properties.GetValue(key); v != "" {
			httpUri = v
			break
		}
	}
	if httpUri == "" {
		return nil, errors.Errorf("invalid http endpoint %s: missing httpUri", uri)
	}

	target := httpUri
	if base, ok := nativeSchemes[scheme]; ok {
		target = base + "://" + httpUri
	}

	configuration := make(map[string]interface{})
	properties.Range(func(key, value string) bool {
		if _, isLenient := lenient[key]; !isLenient {
			configuration[key] = catalog.DecodeValue(value)
		}
		return true
	})
	for _, key := range authorityKeys {
		delete(configuration, key)
	}
	options := DefaultOptions()
	if err := maps.WeakDecode(configuration, &options); err != nil {
		return nil, errors.Wrapf(err, "invalid http endpoint %s", uri)
	}
	return NewProducer(uri, target, catalog.CreateQueryString(lenient, false), options)
}
