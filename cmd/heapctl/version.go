package main

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set via -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type versionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Built   string `json:"built"`
	Go      string `json:"go"`
}

// currentVersion fills unset ldflags values from the embedded build info.
func currentVersion() versionInfo {
	v := versionInfo{Version: version, Commit: commit, Built: date, Go: runtime.Version()}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}
	if v.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		v.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if v.Commit == "none" {
				v.Commit = s.Value
			}
		case "vcs.time":
			if v.Built == "unknown" {
				v.Built = s.Value
			}
		}
	}
	return v
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := currentVersion()
		if jsonOut {
			return printJSON(v)
		}
		printInfo("heapctl %s\n", v.Version)
		printInfo("  commit: %s\n", v.Commit)
		printInfo("  built: %s\n", v.Built)
		printInfo("  go: %s\n", v.Go)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
