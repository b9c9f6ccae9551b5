package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	liflo "github.com/liflo-ai/liflo"
	"github.com/liflo-ai/liflo/internal/service"
)

func TipsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tips",
		Short: "Print the flow guide tips",
		RunE: func(cmd *cobra.Command, args []string) error {
			flow, err := service.NewFlowService(liflo.ContentFS, service.FlowGuidePath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			guide := flow.Guide()
			fmt.Fprintln(out, guide.Title)
			for i, tip := range flow.Tips() {
				fmt.Fprintf(out, "%d. %s\n", i+1, tip)
			}
			return nil
		},
	}
}
