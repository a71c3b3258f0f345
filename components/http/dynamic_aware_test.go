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
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rulego/dynroute/api/types"
	"github.com/rulego/dynroute/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) *catalog.Catalog {
	list, err := Schemas()
	require.Nil(t, err)
	c, err := catalog.NewCatalog(list...)
	require.Nil(t, err)
	return c
}

func resolve(t *testing.T, aware types.SendDynamicAware, uri string) (string, bool) {
	entry, err := aware.Prepare(uri)
	require.Nil(t, err)
	staticUri, ok, err := aware.ResolveStaticUri(entry)
	require.Nil(t, err)
	return staticUri, ok
}

func runPre(t *testing.T, aware types.SendDynamicAware, uri string) types.Metadata {
	entry, err := aware.Prepare(uri)
	require.Nil(t, err)
	pre, err := aware.CreatePreProcessor(entry)
	require.Nil(t, err)
	exchange := types.NewExchange(context.Background(), types.NewMsg(0, "TEST", types.TEXT, nil, ""))
	if pre != nil {
		assert.True(t, pre(exchange))
	}
	return exchange.In.Metadata
}

func TestSchemas(t *testing.T) {
	list, err := Schemas()
	require.Nil(t, err)
	assert.Equal(t, 5, len(list))
	for _, schema := range list {
		assert.True(t, schema.Lenient)
		f, ok := schema.Field("httpUri")
		assert.True(t, ok, schema.Scheme)
		assert.True(t, f.IsPath())
		assert.True(t, schema.HasParameter("throwExceptionOnFailure"))
	}
	c := &Component{}
	assert.Equal(t, len(c.Schemes()), len(c.Schemas()))
}

func TestResolveStaticUri(t *testing.T) {
	aware := NewSendDynamicAware(SchemeHttp, newTestCatalog(t))
	assert.Equal(t, SchemeHttp, aware.Scheme())

	for _, drink := range []string{"beer", "wine", "red wine"} {
		staticUri, ok := resolve(t, aware, "http://localhost:8080/bar?throwExceptionOnFailure=false&drink="+drink)
		assert.True(t, ok)
		assert.Equal(t, "http://localhost:8080?throwExceptionOnFailure=false", staticUri)
	}

	//路径不同，静态uri相同
	staticUri, ok := resolve(t, aware, "http://localhost:8080/foo/bar")
	assert.True(t, ok)
	assert.Equal(t, "http://localhost:8080", staticUri)

	//默认端口不出现在静态uri
	staticUri, ok = resolve(t, aware, "http://localhost:80/bar?drink=beer")
	assert.True(t, ok)
	assert.Equal(t, "http://localhost", staticUri)

	//只有宽松参数
	staticUri, ok = resolve(t, aware, "http://localhost:8080?readTimeoutMs=100&drink=beer")
	assert.True(t, ok)
	assert.Equal(t, "http://localhost:8080?readTimeoutMs=100", staticUri)

	//既没有路径也没有宽松参数，不需要优化
	_, ok = resolve(t, aware, "http://localhost:8080?connectTimeout=100")
	assert.False(t, ok)
	_, ok = resolve(t, aware, "http://localhost:8080/")
	assert.False(t, ok)
}

func TestResolveStaticUriNonNative(t *testing.T) {
	aware := NewSendDynamicAware(SchemeHttpClient, newTestCatalog(t))
	staticUri, ok := resolve(t, aware, "httpclient:http://localhost:8080/bar?throwExceptionOnFailure=false&drink=beer")
	assert.True(t, ok)
	assert.Equal(t, "httpclient:http://localhost:8080?throwExceptionOnFailure=false", staticUri)

	metadata := runPre(t, aware, "httpclient:http://localhost:8080/bar?drink=beer")
	assert.Equal(t, "/bar", metadata.GetValue(types.HttpPathKey))
	assert.Equal(t, "drink=beer", metadata.GetValue(types.HttpQueryKey))
}

func TestResolveStaticUriDeterministic(t *testing.T) {
	aware := NewSendDynamicAware(SchemeHttps, newTestCatalog(t))
	uri := "https://example.com:8443/a/b?insecureSkipVerify=true&readTimeoutMs=10&x=1&y=2"
	first, ok := resolve(t, aware, uri)
	assert.True(t, ok)
	for i := 0; i < 10; i++ {
		staticUri, _ := resolve(t, aware, uri)
		assert.Equal(t, first, staticUri)
	}
	assert.Equal(t, "https://example.com:8443?insecureSkipVerify=true&readTimeoutMs=10", first)
}

func TestWithAuthorityKeys(t *testing.T) {
	c, err := catalog.NewCatalog(types.ComponentSchema{
		Scheme:  SchemeHttp,
		Syntax:  "http://address",
		Lenient: true,
		Fields: []types.SchemaField{
			{Name: "address", Kind: types.FieldKindPath, Required: true},
		},
	})
	require.Nil(t, err)

	aware := NewSendDynamicAware(SchemeHttp, c, WithAuthorityKeys("address"))
	staticUri, ok := resolve(t, aware, "http://localhost:8080/bar?x=1")
	assert.True(t, ok)
	assert.Equal(t, "http://localhost:8080", staticUri)

	//默认参数名不存在时不改写地址
	aware = NewSendDynamicAware(SchemeHttp, c)
	staticUri, ok = resolve(t, aware, "http://localhost:8080/bar?x=1")
	assert.True(t, ok)
	assert.Equal(t, "http://localhost:8080/bar", staticUri)
}

func TestPrepareErrors(t *testing.T) {
	aware := NewSendDynamicAware(SchemeHttp, newTestCatalog(t))
	_, err := aware.Prepare("ftp://localhost/a")
	assert.True(t, errors.Is(err, types.ErrSchemaLookup))
	_, err = aware.Prepare("no-scheme")
	assert.True(t, errors.Is(err, types.ErrSchemaLookup))
}

func TestResolveStaticUriAssemblyError(t *testing.T) {
	aware := NewSendDynamicAware("foo", newTestCatalog(t))
	entry := types.NewDynamicAwareEntry("foo://localhost/a?x=1",
		types.NewProperties("httpUri", "localhost/a", "x", "1"), map[string]string{"x": "1"})
	_, ok, err := aware.ResolveStaticUri(entry)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, types.ErrAssembly))
}

func TestCreatePreProcessor(t *testing.T) {
	aware := NewSendDynamicAware(SchemeHttp, newTestCatalog(t))

	metadata := runPre(t, aware, "http://localhost:8080/bar?throwExceptionOnFailure=false&size=2&drink=beer")
	assert.Equal(t, "/bar", metadata.GetValue(types.HttpPathKey))
	//按key排序
	assert.Equal(t, "drink=beer&size=2", metadata.GetValue(types.HttpQueryKey))

	metadata = runPre(t, aware, "http://localhost:8080/bar/baz")
	assert.Equal(t, "/bar/baz", metadata.GetValue(types.HttpPathKey))
	assert.False(t, metadata.Has(types.HttpQueryKey))

	metadata = runPre(t, aware, "http://localhost:8080?drink=red%20wine")
	assert.False(t, metadata.Has(types.HttpPathKey))
	assert.Equal(t, "drink=red+wine", metadata.GetValue(types.HttpQueryKey))

	entry, err := aware.Prepare("http://localhost:8080?readTimeoutMs=100")
	require.Nil(t, err)
	pre, err := aware.CreatePreProcessor(entry)
	assert.Nil(t, err)
	assert.Nil(t, pre)

	post, err := aware.CreatePostProcessor(entry)
	assert.Nil(t, err)
	assert.Nil(t, post)
}

func TestSendDynamicAwareConcurrent(t *testing.T) {
	aware := NewSendDynamicAware(SchemeHttp, newTestCatalog(t))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				uri := fmt.Sprintf("http://localhost:8080/item/%d?throwExceptionOnFailure=false&n=%d", i, j)
				entry, err := aware.Prepare(uri)
				assert.Nil(t, err)
				staticUri, ok, err := aware.ResolveStaticUri(entry)
				assert.Nil(t, err)
				assert.True(t, ok)
				assert.Equal(t, "http://localhost:8080?throwExceptionOnFailure=false", staticUri)

				pre, _ := aware.CreatePreProcessor(entry)
				exchange := types.NewExchange(context.Background(), types.NewMsg(0, "TEST", types.TEXT, nil, ""))
				pre(exchange)
				assert.Equal(t, fmt.Sprintf("/item/%d", i), exchange.In.Metadata.GetValue(types.HttpPathKey))
				assert.Equal(t, fmt.Sprintf("n=%d", j), exchange.In.Metadata.GetValue(types.HttpQueryKey))
			}
		}(i)
	}
	wg.Wait()
}
