package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [content-file]",
		Short: "Check a content file",
		Long:  "Validates a content file against the catalog schema and cross-references. Without a file, checks the embedded catalog.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			cat, err := loadCatalog(path)
			if err != nil {
				return err
			}
			for _, w := range cat.Warnings {
				fmt.Println("warning:", w)
			}
			fmt.Printf("ok: %d ways, %d feats, %d networks, %d crew, %d councils\n",
				len(cat.Ways), len(cat.Feats), len(cat.Networks), len(cat.Crew), len(cat.Councils))
			return nil
		},
	}
}
