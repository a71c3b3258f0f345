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

// Package endpoint provides the route DSL. A route reads messages from one
// consumer endpoint (From) and runs them through an ordered list of steps:
// processors (Process), static destinations (To) and dynamic destinations (ToD)
// whose uri is a template evaluated for every message.
//
// Package endpoint 路由定义。路由从输入端点（From）读取消息，按顺序执行处理器（Process）、
// 发送到静态目标（To）或者发送到动态目标（ToD）。
//
// Usage:
//
//	router := endpoint.NewRouter().From("direct:start").
//		Process(func(exchange *types.Exchange) bool {
//			exchange.In.Metadata.PutValue("drink", "beer")
//			return true
//		}).
//		ToD("http://localhost:8080/bar?throwExceptionOnFailure=false&drink=${drink}").
//		To("log:result").
//		End()
//	id, err := ctx.AddRouter(router)
//
// Routes can also be declared in configuration files, see RouteDefinition.
package endpoint
