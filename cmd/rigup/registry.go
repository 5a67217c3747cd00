package main

import (
	"github.com/alexisbeaulieu97/rigup/internal/logger"
	"github.com/alexisbeaulieu97/rigup/internal/platform"
	"github.com/alexisbeaulieu97/rigup/internal/plugin"
	binaryplugin "github.com/alexisbeaulieu97/rigup/internal/plugins/binary"
	"github.com/alexisbeaulieu97/rigup/internal/plugins/cmdexec"
	configblockplugin "github.com/alexisbeaulieu97/rigup/internal/plugins/configblock"
	extensionplugin "github.com/alexisbeaulieu97/rigup/internal/plugins/extension"
	langpkgplugin "github.com/alexisbeaulieu97/rigup/internal/plugins/langpkg"
	pkgmgrplugin "github.com/alexisbeaulieu97/rigup/internal/plugins/pkgmgr"
	versionmgrplugin "github.com/alexisbeaulieu97/rigup/internal/plugins/versionmgr"
)

// newRegistry registers every built-in adapter.
func newRegistry(log *logger.Logger, runner cmdexec.Runner, info platform.Info, sudo bool) (*plugin.Registry, error) {
	registry := plugin.NewRegistry(log)
	pm := pkgmgrplugin.Options{Runner: runner, WSL: info.WSL, Sudo: sudo}

	plugins := []plugin.Plugin{
		pkgmgrplugin.NewWinget(pm),
		pkgmgrplugin.NewBrew(pm),
		pkgmgrplugin.NewApt(pm),
		versionmgrplugin.NewFnm(runner),
		versionmgrplugin.NewUv(runner),
		langpkgplugin.NewNpm(runner),
		langpkgplugin.NewUvTool(runner),
		extensionplugin.New(runner),
		binaryplugin.New(runner),
		configblockplugin.New(),
	}
	for _, p := range plugins {
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
