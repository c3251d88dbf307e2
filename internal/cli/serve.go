package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/rollcall/internal/wire"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the attendance HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = wire.Config().HTTPAddr
			}
			return wire.HTTPServer().Listen(cmd.Context(), addr)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (defaults to http_addr)")
	return cmd
}
