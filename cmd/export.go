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
	"fmt"

	"github.com/spf13/cobra"
)

// ExportCmd represents the export command
var ExportCmd = &cobra.Command{
	Use:   "export file.stl",
	Short: "Write renderer ready vertex and index buffers for a binary STL file",
	Long: `Parse a binary STL file and write interleaved x,y,z,nx,ny,nz float32 vertices
followed by uint32 triangle indices, both as little endian length prefixed arrays`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		s := currentSettings()
		outFile, _ := cmd.Flags().GetString("output")
		if outFile == "" {
			outFile = exportPath(".", args[0])
		}
		solid, err := parseFile(cmd.Context(), args[0], s)
		if err != nil {
			return
		}
		if err = exportSolid(solid, outFile, s.Workers); err != nil {
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d vertices to %s\n", 3*solid.NumFacets(), outFile)
		return
	},
}

func init() {
	rootCmd.AddCommand(ExportCmd)
	ExportCmd.Flags().StringP("output", "o", "", "output file (default <name>.geom in the current directory)")
}
