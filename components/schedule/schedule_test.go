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

package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/rulego/dynroute/api/types"
	"github.com/rulego/dynroute/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedule(t *testing.T) {
	c := (&Component{}).New().(*Component)
	defer c.Stop()

	props := types.NewProperties("name", "tick", "cron", catalog.EncodeValue("*/1 * * * * *"))
	endpoint, err := c.CreateEndpoint(types.NewConfig(), "schedule:tick?cron=*/1 * * * * *", props, nil)
	require.Nil(t, err)
	consumer := endpoint.(types.ConsumerEndpoint)

	fired := make(chan string, 10)
	require.Nil(t, consumer.Consume(func(exchange *types.Exchange) bool {
		select {
		case fired <- exchange.In.Metadata.GetValue(NameMetadataKey):
		default:
		}
		return true
	}))
	require.Nil(t, consumer.Start())
	require.Nil(t, c.Start())

	select {
	case name := <-fired:
		assert.Equal(t, "tick", name)
	case <-time.After(3 * time.Second):
		t.Fatal("schedule not fired")
	}

	err = endpoint.Send(types.NewExchange(context.Background(), types.NewMsg(0, "TEST", types.TEXT, nil, "")))
	assert.NotNil(t, err)

	endpoint.Destroy()
	assert.Equal(t, 0, len(c.cron.Entries()))
}

func TestScheduleInvalid(t *testing.T) {
	c := &Component{}
	_, err := c.CreateEndpoint(types.NewConfig(), "schedule:tick", types.NewProperties("name", "tick"), nil)
	assert.NotNil(t, err)
	_, err = c.CreateEndpoint(types.NewConfig(), "schedule:tick?cron=abc", types.NewProperties("name", "tick", "cron", "abc"), nil)
	assert.NotNil(t, err)

	endpoint, err := c.CreateEndpoint(types.NewConfig(), "schedule:hb?cron=@every 1m",
		types.NewProperties("name", "hb", "cron", "%40every+1m"), nil)
	require.Nil(t, err)
	assert.Equal(t, "@every 1m", endpoint.(*Endpoint).spec)
	c.Stop()
}
