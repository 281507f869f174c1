package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MOYARU/apiprobe/internal/checks/registry"
	"github.com/MOYARU/apiprobe/internal/jsonutil"
	msges "github.com/MOYARU/apiprobe/internal/messages"
)

var probesJSON bool

var probesCmd = &cobra.Command{
	Use:   "probes",
	Short: "List the available probes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		infos := registry.Infos()
		if probesJSON {
			return jsonutil.Encode(cmd.OutOrStdout(), infos)
		}
		fmt.Fprintln(cmd.OutOrStdout(), msges.GetUIMessage("ProbesTitle"))
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, info := range infos {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", info.ID, info.Name, info.Description)
		}
		return tw.Flush()
	},
}

func init() {
	probesCmd.Flags().BoolVar(&probesJSON, "json", false, "Print the probe list as JSON")
}
