package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go-aduan/config"
	"go-aduan/detection"
	"go-aduan/types"
)

func newClusterCmd() *cobra.Command {
	var input, asOf string
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Cluster a JSON array of reports and print the result",
		Long: `Reads a JSON array of reports and writes the clustering result as JSON.
Clustering settings come from config.yaml and the CLUSTER_* variables.

Examples:
  aduan cluster -i reports.json
  cat reports.json | aduan cluster --as-of 2025-03-11T08:00:00Z`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var reports []types.Report
			if err := readJSON(cmd, input, &reports); err != nil {
				return err
			}
			engine, err := batchEngine(asOf)
			if err != nil {
				return err
			}
			result, err := engine.ClusterReports(cmd.Context(), reports)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "-", "reports file, - for stdin")
	cmd.Flags().StringVar(&asOf, "as-of", "", "evaluate at this RFC3339 time instead of now")
	return cmd
}

func newRankCmd() *cobra.Command {
	var input, asOf string
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank a JSON array of clusters into recommendations",
		RunE: func(cmd *cobra.Command, args []string) error {
			var clusters []types.Cluster
			if err := readJSON(cmd, input, &clusters); err != nil {
				return err
			}
			engine, err := batchEngine(asOf)
			if err != nil {
				return err
			}
			recs, err := engine.RankClusters(clusters)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), recs)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "-", "clusters file, - for stdin")
	cmd.Flags().StringVar(&asOf, "as-of", "", "evaluate at this RFC3339 time instead of now")
	return cmd
}

func batchEngine(asOf string) (*detection.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if asOf != "" {
		t, err := time.Parse(time.RFC3339, asOf)
		if err != nil {
			return nil, fmt.Errorf("invalid --as-of: %w", err)
		}
		cfg.Clustering.AsOf = t
	}
	return detection.New(cfg.Clustering), nil
}

func readJSON(cmd *cobra.Command, path string, v any) error {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
