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

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rulego/dynroute/internal/app"
	"github.com/rulego/dynroute/internal/config"
	"github.com/rulego/dynroute/internal/logging"
)

const version = "1.0.0"

// cliOptions 命令行参数
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts, nil))
}

func parseFlags(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("dynroute", flag.ContinueOnError)
	fs.SetOutput(stdErr)
	fs.StringVar(&opts.configPath, "c", "config.yaml", "配置文件")
	fs.BoolVar(&opts.checkOnly, "check", false, "只校验配置")
	fs.BoolVar(&opts.showVersion, "v", false, "打印版本")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

// run 返回退出码，stop为nil时等待系统信号
func run(opts cliOptions, stop <-chan os.Signal) int {
	if opts.showVersion {
		fmt.Fprintf(stdOut, "dynroute v%s\n", version)
		return 0
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "load config error: %v\n", err)
		return 1
	}
	logger, err := logging.InitLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(stdErr, "init logger error: %v\n", err)
		return 1
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.WithError(err).Error("create routes failed")
		return 1
	}
	if opts.checkOnly {
		a.Stop()
		logger.WithField("routes", len(cfg.Routes)).Info("config ok")
		return 0
	}
	if err := a.Start(); err != nil {
		a.Stop()
		logger.WithError(err).Error("start failed")
		return 1
	}
	logger.WithField("config", opts.configPath).Info("dynroute started")

	if stop == nil {
		sigs := make(chan os.Signal, 1)
		// 监听中断信号和终止信号
		signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
		stop = sigs
	}
	<-stop
	a.Stop()
	logger.Info("dynroute stopped")
	return 0
}
