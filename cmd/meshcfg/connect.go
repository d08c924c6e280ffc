package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/muurk/meshcfg/internal/config"
	"github.com/muurk/meshcfg/internal/deviceconfig"
	"github.com/muurk/meshcfg/internal/device"
	"github.com/muurk/meshcfg/internal/discovery"
	"github.com/muurk/meshcfg/internal/logging"
	"github.com/muurk/meshcfg/internal/meshcli"
)

// connection is an open session on one radio plus its first snapshot.
type connection struct {
	target    string
	executor  *meshcli.Executor
	transport *device.Transport
	session   *device.Session
	original  *deviceconfig.Snapshot
	logger    *zap.Logger
}

// registry returns the loaded registry, or an empty one.
func registry() *config.Registry {
	reg, err := config.LoadRegistry()
	if err != nil || reg == nil {
		return config.NewRegistry()
	}
	return reg
}

// toolPath picks the executable: --tool, then the config file, then
// MESHTASTIC_CLI and PATH.
func toolPath() string {
	if toolFlag != "" {
		return toolFlag
	}
	return meshcli.ResolveToolPath(registry().ToolPath())
}

// resolveTarget applies the connection policy to --port/--host, the
// preferred port and the attached serial devices.
func resolveTarget() (string, bool, error) {
	if hostFlag != "" {
		return hostFlag, true, nil
	}
	target, err := discovery.ResolveTarget(portFlag, registry().PreferredPort(), discovery.ListSerialPorts())
	return target, false, err
}

// connect opens the radio, waits until it answers and reads its
// configuration. The caller must close the returned connection.
func connect(ctx context.Context) (*connection, error) {
	target, isHost, err := resolveTarget()
	if err != nil {
		return nil, err
	}

	logger := logging.Named("device")
	cfg := meshcli.DefaultConfig()
	cfg.ToolPath = toolPath()
	if isHost {
		cfg.Host = target
	} else {
		cfg.Port = target
	}
	exec := meshcli.NewExecutor(cfg, logging.Named("meshcli"))
	transport := device.NewTransport(exec, "", logger)

	session, err := transport.OpenSession(target)
	if err != nil {
		return nil, discovery.OpenFailed(target, err)
	}

	if err := session.Ready(ctx); err != nil {
		_ = session.Close()
		return nil, discovery.OpenFailed(target, err)
	}

	original, err := session.Snapshot(ctx, false)
	if err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("read configuration from %s: %w", target, err)
	}

	id := session.Identity()
	reg := registry()
	reg.RecordConnection(id.ID, target, id.HWModel, id.FirmwareVersion)
	if err := reg.Save(); err != nil {
		logger.Warn("could not save config", zap.Error(err))
	}

	return &connection{
		target:    target,
		executor:  exec,
		transport: transport,
		session:   session,
		original:  original,
		logger:    logger,
	}, nil
}

// Close releases the port. The apply engine may already have done so.
func (c *connection) Close() error {
	return c.session.Close()
}
