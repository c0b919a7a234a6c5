package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PHoulding/ecs-clustering/internal/sim"
	"github.com/PHoulding/ecs-clustering/internal/simparams"
	"github.com/PHoulding/ecs-clustering/internal/stats"
	"github.com/PHoulding/ecs-clustering/internal/ui"
)

func runCmd() *cobra.Command {
	var (
		configPath string
		outDir     string
		sqlitePath string
		simNumber  int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single simulation and write its event logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(configPath, outDir, sqlitePath, simNumber)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML simulation parameters file (defaults to Default())")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory to write CHEvents/MembershipEvents/FinalStats CSVs to")
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "optional SQLite database path to also flush events into")
	cmd.Flags().IntVar(&simNumber, "sim-number", 1, "run identifier used in the CHEvents_<n>.csv / MembershipEvents_<n>.csv filenames")

	return cmd
}

func runSimulation(configPath, outDir, sqlitePath string, simNumber int) error {
	params, err := loadParams(configPath)
	if err != nil {
		return err
	}

	s, err := sim.New(params)
	if err != nil {
		return fmt.Errorf("build simulation: %w", err)
	}

	s.Run(context.Background())

	if err := writeOutputs(s, outDir, sqlitePath, simNumber, params); err != nil {
		return err
	}

	printSummary(s, params)
	return nil
}

func loadParams(configPath string) (simparams.Params, error) {
	if configPath == "" {
		return simparams.Default(), nil
	}
	return simparams.Load(configPath)
}

func writeOutputs(s *sim.Simulation, outDir, sqlitePath string, simNumber int, params simparams.Params) error {
	st := s.Stats()

	if err := st.WriteCHEventsCSV(outDir, simNumber, s.StartTime()); err != nil {
		return fmt.Errorf("write CH events: %w", err)
	}
	if err := st.WriteMembershipEventsCSV(outDir, simNumber, s.StartTime()); err != nil {
		return fmt.Errorf("write membership events: %w", err)
	}

	heads, members, gates, guests := st.AverageRoleCounts(params.RunTime)
	row := stats.FinalStatsRow{
		Seed:                       params.Seed,
		NumNodes:                   params.TotalNodes,
		NodeSpeed:                  params.TravellerVelocity,
		AvgClusterSizeTable:        st.AverageClusterSizeByTable(params.RunTime),
		AvgClusterSizeFormula:      st.AverageClusterSizeByFormula(),
		AvgClusterHeads:            heads,
		AvgMembers:                 members,
		AvgGates:                   gates,
		AvgGuests:                  guests,
		AvgCHLifetime:              st.AverageCHLifetime(s.EndTime()),
		AvgMembershipLifetime:      st.AverageMembershipLifetime(s.EndTime()),
	}
	clusteringMsgs, clusterChangeMsgs := st.ChangeMessageTotals()
	row.TotalClusteringMessages = clusteringMsgs
	row.TotalClusterChangeMessages = clusterChangeMsgs

	if err := st.AppendFinalStatsCSV(outDir, row); err != nil {
		return fmt.Errorf("append final stats: %w", err)
	}

	if sqlitePath != "" {
		store, err := stats.OpenSQLiteStore(sqlitePath)
		if err != nil {
			return fmt.Errorf("open sqlite store: %w", err)
		}
		defer store.Close()
		runID := fmt.Sprintf("sim-%d", simNumber)
		if err := store.Flush(runID, st, s.StartTime()); err != nil {
			return fmt.Errorf("flush sqlite store: %w", err)
		}
	}

	return nil
}

func printSummary(s *sim.Simulation, params simparams.Params) {
	st := s.Stats()
	heads, members, gates, guests := st.AverageRoleCounts(params.RunTime)

	fmt.Println(ui.AccentStyle.Render("ecssim run complete"))
	fmt.Println(ui.KeyValues(
		ui.KV("nodes", fmt.Sprintf("%d", params.TotalNodes)),
		ui.KV("runtime", params.RunTime.String()),
		ui.KV("routing", params.RoutingName),
		ui.KV("seed", fmt.Sprintf("%d", params.Seed)),
	))

	fmt.Println(ui.Table(
		[]string{"avg CH", "avg CM", "avg GW", "avg CG", "cluster size (table)", "cluster size (formula)"},
		[][]string{{
			fmt.Sprintf("%.2f", heads),
			fmt.Sprintf("%.2f", members),
			fmt.Sprintf("%.2f", gates),
			fmt.Sprintf("%.2f", guests),
			fmt.Sprintf("%.2f", st.AverageClusterSizeByTable(params.RunTime)),
			fmt.Sprintf("%.2f", st.AverageClusterSizeByFormula()),
		}},
	))
}
