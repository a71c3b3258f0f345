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
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// 动态发送结果
const (
	// ResultOptimized 使用优化器计算出来的静态端点
	ResultOptimized = "optimized"
	// ResultFallback 优化器不可用或者不需要优化，使用完整uri创建端点
	ResultFallback = "fallback"
	// ResultUnsupported scheme没有优化器
	ResultUnsupported = "unsupported"
)

type metrics struct {
	dynamicSends     *prometheus.CounterVec
	endpointsCreated *prometheus.CounterVec
}

// newMetrics reg为nil时指标不注册
// 多个路由上下文使用同一个reg时共用已经注册的指标
func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		dynamicSends: registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dynroute",
			Name:      "dynamic_sends_total",
			Help:      "Total number of messages sent to dynamic destinations.",
		}, []string{"scheme", "result"})),
		endpointsCreated: registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dynroute",
			Name:      "endpoints_created_total",
			Help:      "Total number of endpoints created by the endpoint registry.",
		}, []string{"scheme"})),
	}
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec) *prometheus.CounterVec {
	if reg == nil {
		return vec
	}
	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
		panic(err)
	}
	return vec
}
