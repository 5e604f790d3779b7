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

	"github.com/ghodss/yaml"
	"github.com/notargets/stlview/geometry"
	"github.com/spf13/cobra"
)

// InfoCmd represents the info command
var InfoCmd = &cobra.Command{
	Use:   "info file.stl",
	Short: "Summarize a binary STL file",
	Long:  `Parse a binary STL file and print its facet count, surface area and normal health`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := currentSettings()
		solid, err := parseFile(cmd.Context(), args[0], s)
		if err != nil {
			return err
		}
		summary := geometry.Summarize(solid, s.Workers)
		out := cmd.OutOrStdout()
		if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
			var data []byte
			if data, err = yaml.Marshal(summary); err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		}
		fmt.Fprintf(out, "%s\t\t= Name\n", summary.Name)
		fmt.Fprintf(out, "%d\t\t= Facets\n", summary.Facets)
		fmt.Fprintf(out, "%.6g\t\t= Surface Area\n", summary.SurfaceArea)
		fmt.Fprintf(out, "%d\t\t= Degenerate Facets\n", summary.DegenerateFacets)
		fmt.Fprintf(out, "%d\t\t= Zero Normals\n", summary.ZeroNormals)
		fmt.Fprintf(out, "%d\t\t= Flipped Normals\n", summary.FlippedNormals)
		fmt.Fprintf(out, "%d\t\t= NaN Facets\n", summary.NaNFacets)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(InfoCmd)
	InfoCmd.Flags().Bool("yaml", false, "print the summary as YAML")
}
