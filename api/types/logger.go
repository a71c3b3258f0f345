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
	"os"

	"github.com/sirupsen/logrus"
)

type Logger interface {
	Printf(format string, v ...interface{})
}

// this is a safeguard, breaking on compile time in case
// `logrus.Logger` does not adhere to our `Logger` interface.
var _ Logger = &logrus.Logger{}

// DefaultLogger returns a `Logger` implementation
func DefaultLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger
}

func NewLogger(custom Logger) Logger {
	if custom != nil {
		return custom
	}

	return DefaultLogger()
}

// DebugLogger 如果日志实现支持Debugf则使用Debug级别，否则退化为Printf
func DebugLogger(logger Logger) func(format string, v ...interface{}) {
	if l, ok := logger.(interface {
		Debugf(format string, v ...interface{})
	}); ok {
		return l.Debugf
	}
	return logger.Printf
}
