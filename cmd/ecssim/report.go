package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/PHoulding/ecs-clustering/internal/ui"
)

func reportCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a directory's FinalStats.csv as a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(dir)
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "directory containing FinalStats.csv")

	return cmd
}

func runReport(dir string) error {
	path := filepath.Join(dir, "FinalStats.csv")
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		fmt.Println(ui.LabelStyle.Render("no rows in " + path))
		return nil
	}

	header, data := rows[0], rows[1:]
	fmt.Println(ui.Table(header, data))
	return nil
}
