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
	"fmt"
	"log/slog"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/notargets/stlview/ctxlog"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	logLevel = new(slog.LevelVar)
	profiler interface{ Stop() }
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stlview",
	Short: "Reads binary STL meshes",
	Long: `
Reads binary STL triangle meshes with a parallel decoder and reports on,
or exports, the resulting solid.

stlview parse part.stl`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		var lvl slog.Level
		if lvl, err = ctxlog.ParseLevel(viper.GetString("logLevel")); err != nil {
			return
		}
		logLevel.Set(lvl)
		switch mode := viper.GetString("profile"); mode {
		case "":
		case "cpu":
			profiler = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
		case "mem":
			profiler = profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook)
		default:
			return fmt.Errorf("unknown profile mode %q, use cpu or mem", mode)
		}
		return
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx := ctxlog.WithLogger(context.Background(), ctxlog.NewLogger(os.Stderr, logLevel))
	err := rootCmd.ExecuteContext(ctx)
	stopProfile()
	if err != nil {
		os.Exit(1)
	}
}

func stopProfile() {
	if profiler != nil {
		profiler.Stop()
		profiler = nil
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.stlview.yaml)")
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "decode goroutines per file, 0 = one per CPU")
	rootCmd.PersistentFlags().Int("progressInterval", 4096, "records each worker decodes between progress reports")
	rootCmd.PersistentFlags().StringP("logLevel", "l", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("profile", "", "write a cpu or mem profile to the current directory")
	for _, name := range []string{"workers", "progressInterval", "logLevel", "profile"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		// Search config in home directory with name ".stlview" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".stlview")
	}

	viper.SetEnvPrefix("STLVIEW")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		ctxlog.FromContext(rootCmd.Context()).Debug("using config file", "file", viper.ConfigFileUsed())
	}
}
