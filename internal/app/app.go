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

// Package app 根据配置组装路由上下文：组件、路由以及指标服务
package app

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rulego/dynroute/api/types"
	"github.com/rulego/dynroute/catalog"
	"github.com/rulego/dynroute/components/rest"
	"github.com/rulego/dynroute/engine"
	"github.com/rulego/dynroute/internal/config"
	"github.com/sirupsen/logrus"
)

// App dynroute 服务
type App struct {
	cfg      *config.Config
	logger   *logrus.Logger
	registry *prometheus.Registry
	ctx      *engine.Context

	lock          sync.Mutex
	metricsServer *http.Server
	metricsLn     net.Listener
}

// New 创建路由上下文并加入配置中的路由
func New(cfg *config.Config, logger *logrus.Logger) (*App, error) {
	runtimeCatalog, err := catalog.NewCatalog()
	if err != nil {
		return nil, err
	}
	for _, file := range cfg.CatalogFiles {
		if err := runtimeCatalog.LoadFile(file); err != nil {
			return nil, errors.Wrapf(err, "load catalog file %s", file)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	ctx := engine.NewContext(
		types.WithLogger(logger),
		types.WithCatalog(runtimeCatalog),
		types.WithRegisterer(registry),
		types.WithEndpointCacheSize(cfg.EndpointCacheSize),
		types.WithProperties(types.BuildMetadata(cfg.Global)),
	)
	if err := ctx.AddComponent(&rest.Component{Addr: cfg.Server.Addr}); err != nil {
		return nil, err
	}
	for _, def := range cfg.Routes {
		router, err := def.Router()
		if err != nil {
			ctx.Stop()
			return nil, err
		}
		id, err := ctx.AddRouter(router)
		if err != nil {
			ctx.Stop()
			return nil, err
		}
		logger.WithFields(logrus.Fields{"action": "add_route", "route": id, "from": def.From}).Info("route added")
	}
	return &App{cfg: cfg, logger: logger, registry: registry, ctx: ctx}, nil
}

// Context 路由上下文
func (a *App) Context() *engine.Context {
	return a.ctx
}

// Start 启动路由和指标服务
func (a *App) Start() error {
	if err := a.ctx.Start(); err != nil {
		return err
	}
	if a.cfg.Server.MetricsAddr == "" {
		return nil
	}
	return a.startMetrics(a.cfg.Server.MetricsAddr)
}

func (a *App) startMetrics(addr string) error {
	a.lock.Lock()
	defer a.lock.Unlock()
	router := httprouter.New()
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{
		MaxRequestsInFlight: 10,
		Registry:            a.registry,
	}))
	router.HandlerFunc(http.MethodGet, "/ready", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "ready", http.StatusOK)
	})
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", addr)
	}
	a.metricsLn = ln
	a.metricsServer = &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go func(server *http.Server) {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			a.logger.WithError(err).Error("metrics server stopped")
		}
	}(a.metricsServer)
	a.logger.WithFields(logrus.Fields{"action": "metrics", "addr": ln.Addr().String()}).Info("metrics server started")
	return nil
}

// MetricsAddr 指标服务实际监听的地址，未启动返回空
func (a *App) MetricsAddr() string {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.metricsLn == nil {
		return ""
	}
	return a.metricsLn.Addr().String()
}

// Stop 停止服务
func (a *App) Stop() {
	a.lock.Lock()
	if a.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.metricsServer.Shutdown(ctx)
		cancel()
		a.metricsServer = nil
		a.metricsLn = nil
	}
	a.lock.Unlock()
	a.ctx.Stop()
}
