package cli

import "github.com/spf13/cobra"

// RegisterRoutes attaches every command group defined in the cli package to
// the provided root command, so they can be invoked like `keypomd keypom
// create-drop ...` from the main binary.
func RegisterRoutes(root *cobra.Command) {
	root.AddCommand(KeypomCmd)
}
