/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

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
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/notargets/stlview/ctxlog"
	"github.com/notargets/stlview/mesh"
	"github.com/notargets/stlview/types"
	"github.com/notargets/stlview/utils"
	"github.com/spf13/viper"
)

// Settings are the viper backed options shared by every subcommand
type Settings struct {
	Workers          int
	ProgressInterval int
}

func currentSettings() Settings {
	return Settings{
		Workers:          viper.GetInt("workers"),
		ProgressInterval: viper.GetInt("progressInterval"),
	}
}

// parseFile runs one MeshParser attempt over path
func parseFile(ctx context.Context, path string, s Settings) (solid *types.Solid, err error) {
	logger := ctxlog.FromContext(ctx).With("file", path)
	mp := mesh.NewMeshParser(
		mesh.WithWorkers(s.Workers),
		mesh.WithProgressInterval(s.ProgressInterval),
		mesh.WithLogger(logger),
		mesh.WithProgressObserver(func(p float32) {
			logger.Debug("progress", "percent", fmt.Sprintf("%5.1f", 100*p))
		}),
	)
	if err = mp.SetSource(mesh.FileSource(path)); err != nil {
		return
	}
	if err = mp.Start(); err != nil {
		return nil, describe(err)
	}
	solid, _ = mp.Solid()
	logger.Debug("memory after parse", "usage", utils.GetMemUsage())
	return
}

// describe prefixes parse failures with what the user should do about them
func describe(err error) error {
	var pe *mesh.ParseError
	if !errors.As(err, &pe) {
		return err
	}
	switch pe.Category() {
	case mesh.CategoryWrongFormat:
		return fmt.Errorf("not an STL file, choose another file: %w", err)
	case mesh.CategoryUnsupported:
		return fmt.Errorf("ASCII STL is not supported, convert to binary STL: %w", err)
	case mesh.CategoryCorrupt:
		return fmt.Errorf("corrupt or truncated STL file: %w", err)
	}
	return err
}
