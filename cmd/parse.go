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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/notargets/stlview/InputParameters"
	"github.com/notargets/stlview/geometry"
	"github.com/notargets/stlview/types"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type parseJob struct {
	Files     []string
	Jobs      int
	ExportDir string
	Settings  Settings
}

type parseResult struct {
	Solid *types.Solid
	Err   error
}

// ParseCmd represents the parse command
var ParseCmd = &cobra.Command{
	Use:   "parse [file.stl ...]",
	Short: "Parse one or more binary STL files",
	Long: `Parse one or more binary STL files and report the facet count of each.
Files can also be listed in a YAML job file:

########################################
Title: "Parts"
Files:
  - bracket.stl
  - housing.stl
Workers: 0          # 0 = one per CPU
ProgressInterval: 4096
Jobs: 2             # files parsed at the same time
ExportDir: geometry # optional, writes <name>.geom buffers
########################################
`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var job *parseJob
		if job, err = newParseJob(cmd, args); err != nil {
			return
		}
		return runParse(cmd, job)
	},
}

func init() {
	rootCmd.AddCommand(ParseCmd)
	ParseCmd.Flags().StringP("inputParameters", "I", "", "YAML job file listing files and parse options")
	ParseCmd.Flags().IntP("jobs", "j", 1, "number of files parsed at the same time")
	ParseCmd.Flags().StringP("exportDir", "o", "", "write geometry buffers for each parsed file into this directory")
}

func newParseJob(cmd *cobra.Command, args []string) (job *parseJob, err error) {
	job = &parseJob{Files: args, Settings: currentSettings()}
	job.Jobs, _ = cmd.Flags().GetInt("jobs")
	job.ExportDir, _ = cmd.Flags().GetString("exportDir")
	ipFile, _ := cmd.Flags().GetString("inputParameters")
	if ipFile != "" {
		var ip *InputParameters.InputParametersSTL
		if ip, err = InputParameters.ReadFile(ipFile); err != nil {
			return nil, err
		}
		if logLevel.Level() <= slog.LevelDebug {
			ip.Print(cmd.ErrOrStderr())
		}
		job.Files = append(job.Files, ip.Files...)
		// Job file values apply unless the flag was given explicitly
		if ip.Workers != 0 && !cmd.Flags().Changed("workers") {
			job.Settings.Workers = ip.Workers
		}
		if ip.ProgressInterval != 0 && !cmd.Flags().Changed("progressInterval") {
			job.Settings.ProgressInterval = ip.ProgressInterval
		}
		if ip.Jobs != 0 && !cmd.Flags().Changed("jobs") {
			job.Jobs = ip.Jobs
		}
		if ip.ExportDir != "" && job.ExportDir == "" {
			job.ExportDir = ip.ExportDir
		}
	}
	if len(job.Files) == 0 {
		return nil, fmt.Errorf("must supply STL files as arguments or in a job file (-I, --inputParameters)")
	}
	if job.Jobs < 1 {
		job.Jobs = 1
	}
	return
}

func runParse(cmd *cobra.Command, job *parseJob) error {
	var (
		ctx     = cmd.Context()
		results = make([]parseResult, len(job.Files))
		g       errgroup.Group
	)
	g.SetLimit(job.Jobs)
	for i, path := range job.Files {
		g.Go(func() error {
			solid, err := parseFile(ctx, path, job.Settings)
			if err == nil && job.ExportDir != "" {
				err = exportSolid(solid, exportPath(job.ExportDir, path), job.Settings.Workers)
			}
			results[i] = parseResult{Solid: solid, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	out := cmd.OutOrStdout()
	for i, r := range results {
		if r.Err != nil {
			fmt.Fprintf(out, "%s\tFAILED\t%v\n", job.Files[i], r.Err)
			errs = append(errs, r.Err)
			continue
		}
		fmt.Fprintf(out, "%s\t%d facets\n", job.Files[i], r.Solid.NumFacets())
	}
	if len(errs) != 0 {
		return fmt.Errorf("%d of %d files failed: %w", len(errs), len(job.Files), errors.Join(errs...))
	}
	return nil
}

func exportPath(dir, stlPath string) string {
	base := filepath.Base(stlPath)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+".geom")
}

func exportSolid(solid *types.Solid, path string, workers int) (err error) {
	var b *geometry.Buffers
	if b, err = geometry.NewBuffers(solid, workers); err != nil {
		return
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	var file *os.File
	if file, err = os.Create(path); err != nil {
		return
	}
	if err = b.Write(file); err != nil {
		file.Close()
		return
	}
	return file.Close()
}
