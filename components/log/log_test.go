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

package log

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rulego/dynroute/api/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type printfLogger struct {
	lines []string
}

func (l *printfLogger) Printf(format string, v ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.InfoLevel)
	config := types.NewConfig(types.WithLogger(logger))

	c := &Component{}
	endpoint, err := c.CreateEndpoint(config, "log:orders", types.NewProperties("name", "orders"), nil)
	require.Nil(t, err)
	assert.Equal(t, "log:orders", endpoint.Uri())

	msg := types.NewMsg(0, "ORDER", types.TEXT, types.BuildMetadata(map[string]string{"k": "v"}), "aa")
	exchange := types.NewExchange(context.Background(), msg)
	require.Nil(t, endpoint.Send(exchange))
	assert.True(t, strings.Contains(buf.String(), "[orders]"))
	assert.True(t, strings.Contains(buf.String(), "data=aa"))
	assert.True(t, strings.Contains(buf.String(), "level=info"))
	assert.Nil(t, exchange.Out)

	//低于日志级别不输出
	buf.Reset()
	endpoint, err = c.CreateEndpoint(config, "log:orders?level=debug", types.NewProperties("name", "orders", "level", "debug"), nil)
	require.Nil(t, err)
	require.Nil(t, endpoint.Send(exchange))
	assert.Equal(t, "", buf.String())

	_, err = c.CreateEndpoint(config, "log:orders?level=abc", types.NewProperties("name", "orders", "level", "abc"), nil)
	assert.NotNil(t, err)
	_, err = c.CreateEndpoint(config, "log:", types.NewProperties(), nil)
	assert.NotNil(t, err)
}

func TestLogPrintf(t *testing.T) {
	logger := &printfLogger{}
	c := &Component{}
	endpoint, err := c.CreateEndpoint(types.NewConfig(types.WithLogger(logger)), "log:a?level=warn", types.NewProperties("name", "a", "level", "warn"), nil)
	require.Nil(t, err)
	require.Nil(t, endpoint.Send(types.NewExchange(context.Background(), types.NewMsg(0, "T", types.TEXT, nil, "bb"))))
	require.Equal(t, 1, len(logger.lines))
	assert.True(t, strings.HasPrefix(logger.lines[0], "[a] id="))
}
