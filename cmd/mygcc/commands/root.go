package commands

import (
	"context"
	"fmt"
	"os"

	"mygcc-backend/internal/config"
	"mygcc-backend/internal/portal"
	"mygcc-backend/internal/telemetry"
	"mygcc-backend/internal/token"
	"mygcc-backend/lib/restyutil"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "mygcc",
	Short: "mygcc serves the myGCC portal as a json api.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json5", "The json5 config file to read.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCodec(cfg config.Config) (token.Codec, error) {
	return token.NewCodec(cfg.Secrets.EncryptionKey, cfg.Secrets.InitVector)
}

// newPortalClient builds the portal client, dumping every http message to
// dumpDir when it is set.
func newPortalClient(cfg config.Config, dumpDir string, tel telemetry.API) (*portal.Client, error) {
	var output restyutil.InstrumentOutput
	if dumpDir != "" {
		fsOutput, err := restyutil.NewFilesystemOutput(dumpDir)
		if err != nil {
			return nil, err
		}
		output = fsOutput
	}

	return portal.NewClient(portal.Options{
		BaseUrl: cfg.Portal.BaseUrl,
		Timeout: cfg.Portal.Timeout(),
		Term: portal.Term{
			Year:   cfg.Portal.Term.Year,
			Number: cfg.Portal.Term.Number,
		},
		Output: output,
	}, tel)
}
