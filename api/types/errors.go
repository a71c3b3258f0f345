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

import "github.com/pkg/errors"

var (
	// ErrSchemaLookup the catalog could not resolve a component schema for the uri
	ErrSchemaLookup = errors.New("schema lookup failed")
	// ErrAssembly the catalog could not assemble a canonical endpoint uri
	ErrAssembly = errors.New("endpoint uri assembly failed")
	// ErrComponentNotFound no component is registered for the uri scheme
	ErrComponentNotFound = errors.New("component not found")
	// ErrNotConsumer the endpoint cannot be used as a route input
	ErrNotConsumer = errors.New("endpoint does not support consumers")
	// ErrNoConsumer a message was sent to an endpoint nobody consumes
	ErrNoConsumer = errors.New("no consumers available on endpoint")
	// ErrHttpOperationFailed the remote http server answered with a failure status
	ErrHttpOperationFailed = errors.New("http operation failed")
	// ErrContextStopped the routing context no longer accepts messages
	ErrContextStopped = errors.New("routing context is stopped")
)
