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

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata(t *testing.T) {
	md := NewMetadata()
	md.PutValue("key1", "value1")
	md.PutValue("", "ignored")
	assert.True(t, md.Has("key1"))
	assert.False(t, md.Has(""))
	assert.Equal(t, "value1", md.GetValue("key1"))

	cp := md.Copy()
	cp.PutValue("key1", "changed")
	assert.Equal(t, "value1", md.GetValue("key1"))

	built := BuildMetadata(map[string]string{"a": "b"})
	assert.Equal(t, map[string]string{"a": "b"}, built.Values())
}

func TestRuleMsg(t *testing.T) {
	msg := NewMsg(0, "TEST", JSON, nil, `{"a":1}`)
	assert.NotEqual(t, "", msg.Id)
	assert.True(t, msg.Ts > 0)
	require.NotNil(t, msg.Metadata)

	msg.Metadata.PutValue("k", "v")
	cp := msg.Copy()
	assert.Equal(t, msg.Id, cp.Id)
	cp.Metadata.PutValue("k", "changed")
	assert.Equal(t, "v", msg.Metadata.GetValue("k"))

	assert.NotEqual(t, msg.Id, NewMsg(0, "TEST", TEXT, nil, "").Id)
}

func TestProperties(t *testing.T) {
	p := NewProperties("httpUri", "localhost:8080/bar", "b", "2", "a", "1")
	assert.Equal(t, []string{"httpUri", "b", "a"}, p.Keys())
	assert.Equal(t, 3, p.Len())

	//重新设置不改变位置
	p.Set("b", "3")
	assert.Equal(t, []string{"httpUri", "b", "a"}, p.Keys())
	assert.Equal(t, "3", p.GetValue("b"))

	p.Delete("b")
	p.Delete("notFound")
	assert.Equal(t, []string{"httpUri", "a"}, p.Keys())
	assert.False(t, p.Has("b"))

	cp := p.Copy()
	cp.Set("c", "4")
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, map[string]string{"httpUri": "localhost:8080/bar", "a": "1", "c": "4"}, cp.ToMap())

	var keys []string
	cp.Range(func(key, value string) bool {
		keys = append(keys, key)
		return len(keys) < 2
	})
	assert.Equal(t, []string{"httpUri", "a"}, keys)

	var empty *Properties
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, "", empty.GetValue("a"))
	assert.Nil(t, empty.Keys())
	assert.Equal(t, 0, NewProperties("odd").Len())
}

func TestDynamicAwareEntry(t *testing.T) {
	props := NewProperties("httpUri", "localhost/bar", "drink", "beer")
	lenient := map[string]string{"drink": "beer", "unknown": "x"}
	entry := NewDynamicAwareEntry("http://localhost/bar?drink=beer", props, lenient)

	//入参修改不影响快照
	props.Set("drink", "wine")
	lenient["drink"] = "wine"

	assert.Equal(t, "http://localhost/bar?drink=beer", entry.OriginalUri())
	assert.Equal(t, "beer", entry.Properties().GetValue("drink"))
	//不在参数中的宽松参数被丢弃
	assert.Equal(t, map[string]string{"drink": "beer"}, entry.LenientProperties())
	assert.True(t, entry.HasLenientProperties())

	//返回的是副本
	entry.Properties().Delete("drink")
	entry.LenientProperties()["drink"] = "wine"
	assert.Equal(t, "beer", entry.Properties().GetValue("drink"))
	assert.Equal(t, "beer", entry.LenientProperties()["drink"])

	assert.False(t, NewDynamicAwareEntry("http://localhost", NewProperties("httpUri", "localhost"), nil).HasLenientProperties())
}

func TestExchange(t *testing.T) {
	exchange := NewExchange(nil, RuleMsg{Data: "in"})
	assert.NotNil(t, exchange.In.Metadata)
	assert.Equal(t, context.Background(), exchange.GetContext())
	assert.Equal(t, "in", exchange.Message().Data)

	//没有响应消息时不变
	exchange.Promote()
	assert.Equal(t, "in", exchange.In.Data)

	out := NewMsg(0, "TEST", TEXT, nil, "out")
	exchange.Out = &out
	assert.Equal(t, "out", exchange.Message().Data)
	exchange.Promote()
	assert.Equal(t, "out", exchange.In.Data)
	assert.Nil(t, exchange.Out)

	assert.Equal(t, context.Background(), (&Exchange{}).GetContext())
}

type printfLogger struct {
	lines []string
}

func (l *printfLogger) Printf(format string, v ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func TestConfig(t *testing.T) {
	config := NewConfig()
	assert.NotNil(t, config.Logger)
	assert.Equal(t, DefaultEndpointCacheSize, config.EndpointCacheSize)
	assert.NotNil(t, config.Properties)
	assert.Nil(t, config.Catalog)

	logger := &printfLogger{}
	reg := prometheus.NewRegistry()
	config = NewConfig(
		WithLogger(logger),
		WithRegisterer(reg),
		WithEndpointCacheSize(10),
		WithEndpointCacheSize(-1),
		WithProperties(BuildMetadata(map[string]string{"a": "b"})),
	)
	assert.Equal(t, logger, config.Logger)
	assert.Equal(t, reg, config.Registerer)
	assert.Equal(t, 10, config.EndpointCacheSize)
	assert.Equal(t, "b", config.Properties.GetValue("a"))

	//不支持Debugf的日志退化为Printf
	DebugLogger(logger)("created %s", "log:a")
	assert.Equal(t, []string{"created log:a"}, logger.lines)
	assert.Equal(t, logger, NewLogger(logger))
	assert.NotNil(t, NewLogger(nil))
}
