package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// options holds the persistent flags shared by all commands.
type options struct {
	configPath  string
	addr        string
	modelsDir   string
	dbPath      string
	model       string
	runtime     string
	logLevel    string
	logFormat   string
	corsOrigins string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "memoryd:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "memoryd",
		Short:         "Local assistant backend with long-term memory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", os.Getenv("MEMORYD_CONFIG"), "Config file (.yaml, .json or .toml; defaults MEMORYD_CONFIG)")
	pf.StringVar(&opts.dbPath, "db", "", "SQLite database path")
	pf.StringVar(&opts.modelsDir, "models-dir", "", "Directory to scan for *.gguf model files")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	pf.StringVar(&opts.logFormat, "log-format", "console", "Log format: console|json")

	root.AddCommand(newServeCmd(opts), newIndexCmd(opts), newPersonaCmd(opts), newModelsCmd(opts))
	return root
}

// splitCSV splits a comma separated flag value, dropping empty items.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
