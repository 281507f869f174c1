package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MOYARU/apiprobe/internal/app/server"
	"github.com/MOYARU/apiprobe/internal/app/ui"
	"github.com/MOYARU/apiprobe/internal/metrics"
	msges "github.com/MOYARU/apiprobe/internal/messages"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scan engine as a JSON HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, err := loadPolicy(cmd)
		if err != nil {
			return err
		}
		recorder, err := metrics.NewRecorder()
		if err != nil {
			return err
		}

		ctx, cancel := ui.WaitForCancel(cmd.Context())
		defer cancel()

		fmt.Fprintln(cmd.OutOrStdout(), msges.GetUIMessage("ServerListening", serveAddr))
		return server.New(policy, recorder, slog.Default()).ListenAndServe(ctx, serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "Listen address")
}
