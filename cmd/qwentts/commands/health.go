package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/qwentts/pkg/cli"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the model server of the current context",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := getContext()
		if err != nil {
			return err
		}
		client := createClient(ctx)

		resp, err := client.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("model server %s: %w", client.BaseURL(), err)
		}
		if jsonOutput() {
			return outputResult(resp)
		}
		plan, err := ctx.DevicePlan()
		if err != nil {
			return err
		}
		fmt.Print(cli.Details(cli.DefaultStyles, client.BaseURL(),
			cli.Field{Label: "Status", Value: resp.Status},
			cli.Field{Label: "Devices", Value: strings.Join(resp.Devices, ", ")},
			cli.Field{Label: "Loaded", Value: strings.Join(resp.Models, ", ")},
			cli.Field{Label: "Plan", Value: plan.String()},
		))
		return nil
	},
}
