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
	"errors"
	"testing"

	"github.com/rulego/dynroute/api/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchemas = []byte(`
components:
  - scheme: http
    syntax: http://httpUri
    lenient: true
    fields:
      - name: httpUri
        kind: path
        required: true
      - name: throwExceptionOnFailure
        type: bool
      - name: httpMethod
  - scheme: rest
    syntax: rest:method:path
    fields:
      - name: method
        kind: path
        required: true
      - name: path
        kind: path
        required: true
  - scheme: direct
    syntax: direct:name
    fields:
      - name: name
        kind: path
        required: true
`)

func newTestCatalog(t *testing.T) *Catalog {
	c, err := NewCatalog()
	require.Nil(t, err)
	require.Nil(t, c.LoadYAML(testSchemas))
	return c
}

func TestEndpointProperties(t *testing.T) {
	c := newTestCatalog(t)

	props, err := c.EndpointProperties("http://localhost:8080/bar?throwExceptionOnFailure=false&drink=beer")
	require.Nil(t, err)
	assert.Equal(t, []string{"httpUri", "throwExceptionOnFailure", "drink"}, props.Keys())
	assert.Equal(t, "localhost:8080/bar", props.GetValue("httpUri"))
	assert.Equal(t, "false", props.GetValue("throwExceptionOnFailure"))
	assert.Equal(t, "beer", props.GetValue("drink"))

	props, err = c.EndpointProperties("rest:get:/users/:id")
	require.Nil(t, err)
	assert.Equal(t, "get", props.GetValue("method"))
	assert.Equal(t, "/users/:id", props.GetValue("path"))

	props, err = c.EndpointProperties("direct:start")
	require.Nil(t, err)
	assert.Equal(t, "start", props.GetValue("name"))
}

func TestEndpointPropertiesCanonicalValues(t *testing.T) {
	c := newTestCatalog(t)
	props, err := c.EndpointProperties("http://localhost/a?drink=red wine&food=fish%20chips&bad=%zz")
	require.Nil(t, err)
	assert.Equal(t, "red+wine", props.GetValue("drink"))
	assert.Equal(t, "fish+chips", props.GetValue("food"))
	assert.Equal(t, "%zz", props.GetValue("bad"))
}

func TestEndpointPropertiesUnknownScheme(t *testing.T) {
	c := newTestCatalog(t)
	_, err := c.EndpointProperties("ftp://localhost/a")
	assert.True(t, errors.Is(err, types.ErrSchemaLookup))

	_, err = c.EndpointLenientProperties("no-scheme")
	assert.True(t, errors.Is(err, types.ErrSchemaLookup))
}

func TestEndpointLenientProperties(t *testing.T) {
	c := newTestCatalog(t)
	lenient, err := c.EndpointLenientProperties("http://localhost:8080/bar?throwExceptionOnFailure=false&drink=beer&size=2")
	require.Nil(t, err)
	assert.Equal(t, map[string]string{"drink": "beer", "size": "2"}, lenient)

	//不允许宽松参数的组件
	lenient, err = c.EndpointLenientProperties("direct:start?foo=bar")
	require.Nil(t, err)
	assert.Equal(t, 0, len(lenient))
}

func TestAsEndpointUri(t *testing.T) {
	c := newTestCatalog(t)
	props := types.NewProperties("httpUri", "localhost:8080", "throwExceptionOnFailure", "false")
	uri, err := c.AsEndpointUri("http", props, false)
	require.Nil(t, err)
	assert.Equal(t, "http://localhost:8080?throwExceptionOnFailure=false", uri)

	props = types.NewProperties("method", "get", "path", "/users/:id")
	uri, err = c.AsEndpointUri("rest", props, false)
	require.Nil(t, err)
	assert.Equal(t, "rest:get:/users/:id", uri)

	props = types.NewProperties("httpUri", "localhost", "q", "a b")
	uri, err = c.AsEndpointUri("http", props, true)
	require.Nil(t, err)
	assert.Equal(t, "http://localhost?q=a+b", uri)
}

func TestAsEndpointUriErrors(t *testing.T) {
	c := newTestCatalog(t)
	_, err := c.AsEndpointUri("http", types.NewProperties("throwExceptionOnFailure", "false"), false)
	assert.True(t, errors.Is(err, types.ErrAssembly))

	_, err = c.AsEndpointUri("unknown", types.NewProperties(), false)
	assert.True(t, errors.Is(err, types.ErrAssembly))
}

func TestRoundTrip(t *testing.T) {
	c := newTestCatalog(t)
	for _, uri := range []string{
		"http://localhost:8080/bar?throwExceptionOnFailure=false&drink=beer",
		"rest:post:/api/v1/msg",
		"direct:start",
	} {
		scheme, _, ok := SplitScheme(uri)
		require.True(t, ok)
		props, err := c.EndpointProperties(uri)
		require.Nil(t, err)
		out, err := c.AsEndpointUri(scheme, props, false)
		require.Nil(t, err)
		assert.Equal(t, uri, out)
	}
}

func TestRegister(t *testing.T) {
	c := newTestCatalog(t)
	err := c.Register(types.ComponentSchema{Scheme: "http", Syntax: "http://httpUri"})
	assert.NotNil(t, err)

	err = c.Register(types.ComponentSchema{Scheme: "bad", Syntax: "other:name"})
	assert.NotNil(t, err)

	assert.Equal(t, []string{"direct", "http", "rest"}, c.Schemes())
	schema, ok := c.Schema("http")
	assert.True(t, ok)
	assert.True(t, schema.Lenient)
	f, ok := schema.Field("throwExceptionOnFailure")
	assert.True(t, ok)
	assert.Equal(t, types.FieldKindParameter, f.Kind)

	c.Unregister("rest")
	_, ok = c.Schema("rest")
	assert.False(t, ok)
}

func TestCreateQueryString(t *testing.T) {
	assert.Equal(t, "a=1&b=x+y", CreateQueryString(map[string]string{"b": "x y", "a": "1"}, true))
	assert.Equal(t, "a=1&b=x+y", CreateQueryString(map[string]string{"b": "x+y", "a": "1"}, false))
	assert.Equal(t, "", CreateQueryString(nil, false))
}

func TestSplitScheme(t *testing.T) {
	scheme, remaining, ok := SplitScheme("http://localhost/a")
	assert.True(t, ok)
	assert.Equal(t, "http", scheme)
	assert.Equal(t, "//localhost/a", remaining)

	_, _, ok = SplitScheme("/a:b")
	assert.False(t, ok)
	_, _, ok = SplitScheme(":b")
	assert.False(t, ok)
}
