/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap/zapcore"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	_ "k8s.io/client-go/plugin/pkg/client/auth"
	ctrl "sigs.k8s.io/controller-runtime"
	clientconfig "sigs.k8s.io/controller-runtime/pkg/client/config"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/dc-tec/cert-sync-controller/internal/config"
	"github.com/dc-tec/cert-sync-controller/internal/controller"
	"github.com/dc-tec/cert-sync-controller/internal/discovery"
	"github.com/dc-tec/cert-sync-controller/internal/hashstore"
	"github.com/dc-tec/cert-sync-controller/internal/remote"
	"github.com/dc-tec/cert-sync-controller/internal/server"
	"github.com/dc-tec/cert-sync-controller/internal/syncer"
)

var setupLog = ctrl.Log.WithName("setup")

func main() {
	opts := zap.Options{}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "cert-sync error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Debug {
		opts.Level = zapcore.Level(-1)
	}
	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	setupLog.Info("Starting cert-sync controller",
		"host", cfg.SSHHost,
		"user", cfg.SSHUser,
		"interval", cfg.SyncInterval.String(),
		"schedule", cfg.SyncSchedule,
		"cert_dir", cfg.RemoteCertDir,
		"config_dir", cfg.RemoteConfigDir,
		"skip_traefik_config", cfg.SkipTraefikConfig)

	restCfg, err := clientconfig.GetConfig()
	if err != nil {
		setupLog.Error(err, "Failed to load Kubernetes configuration")
		os.Exit(1)
	}
	kubeClient, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		setupLog.Error(err, "Failed to create Kubernetes client")
		os.Exit(1)
	}
	dynClient, err := dynamic.NewForConfig(restCfg)
	if err != nil {
		setupLog.Error(err, "Failed to create dynamic client")
		os.Exit(1)
	}

	// The Kubernetes API is the source of truth; refusing to start without it
	// surfaces RBAC and connectivity problems immediately.
	if _, err := kubeClient.Discovery().ServerVersion(); err != nil {
		setupLog.Error(err, "Kubernetes API is unreachable")
		os.Exit(1)
	}

	store, err := hashstore.Open(cfg.HashStorePath)
	if err != nil {
		setupLog.Error(err, "Failed to open hash store", "path", cfg.HashStorePath)
		os.Exit(1)
	}
	setupLog.V(1).Info("Hash store loaded", "path", cfg.HashStorePath, "entries", store.Len())

	dialer, err := remote.NewSSHDialer(remote.DialerConfig{
		Host:           cfg.SSHHost,
		User:           cfg.SSHUser,
		KeyPath:        cfg.SSHKeyPath,
		KnownHostsPath: cfg.SSHKnownHostsPath,
		Timeout:        cfg.ConnectTimeout,
		QPS:            cfg.DialQPS,
		Burst:          cfg.DialBurst,
	}, ctrl.Log.WithName("remote"))
	if err != nil {
		setupLog.Error(err, "Failed to configure SSH transport")
		os.Exit(1)
	}

	ctx := ctrl.SetupSignalHandler()

	// Advisory only. A proxy host that is down at startup will simply fail
	// its first sync attempts and heal through the regular retry cadence.
	probeCtx, probeCancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	if err := dialer.Probe(probeCtx); err != nil {
		setupLog.Info("Remote host is not reachable yet, transfers will be retried each tick",
			"host", cfg.SSHHost, "error", err.Error())
	}
	probeCancel()

	status := controller.NewStatus()
	sync := syncer.New(kubeClient, dialer, store, syncer.Config{
		CertDir:      cfg.RemoteCertDir,
		ConfigDir:    cfg.RemoteConfigDir,
		SkipFragment: cfg.SkipTraefikConfig,
	}, ctrl.Log.WithName("syncer"))
	disc := discovery.NewDiscoverer(kubeClient, dynClient, ctrl.Log.WithName("discovery"))

	loop, err := controller.NewLoop(disc, sync, status, cfg.SyncInterval, cfg.SyncSchedule, ctrl.Log.WithName("reconcile"))
	if err != nil {
		setupLog.Error(err, "Failed to build reconcile loop")
		os.Exit(1)
	}

	go server.Serve(ctx, server.NewMetrics(cfg.MetricsAddr), ctrl.Log.WithName("metrics"))
	go server.Serve(ctx, server.NewHealth(cfg.HealthAddr, status), ctrl.Log.WithName("health"))

	loop.Run(ctx)
	setupLog.Info("Controller stopped")
}
