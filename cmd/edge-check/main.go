// Package main provides edge-check, a standalone CLI for spot-checking the
// engine's calculations against a single input without a database or provider.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/edge-engine/internal/engine"
	"github.com/yourusername/edge-engine/internal/models"
)

var (
	prob     float64
	odds     float64
	books    int
	bankroll float64
)

var rootCmd = &cobra.Command{
	Use:   "edge-check",
	Short: "Spot-check edge engine calculations",
	Long:  `Runs individual engine calculations (Kelly staking, CLV projection, a full match pipeline) from the command line for verification and debugging.`,
}

var kellyCmd = &cobra.Command{
	Use:   "kelly",
	Short: "Compute a Kelly stake for a probability and price",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := engine.DefaultConfig()
		advice := cfg.ComputeKellyStake(prob, odds)
		printJSON(advice)
		if bankroll > 0 {
			fmt.Printf("stake: %.2f\n", advice.StakeFraction*bankroll)
		}
		return nil
	},
}

var clvCmd = &cobra.Command{
	Use:   "clv",
	Short: "Project closing line value for a probability and price",
	RunE: func(cmd *cobra.Command, args []string) error {
		edge := prob - 1.0/odds
		projection := engine.ProjectCLV(prob, odds, edge, books)
		printJSON(projection)
		return nil
	},
}

var matchCmd = &cobra.Command{
	Use:   "match <fixture.json> [odds.json]",
	Short: "Run the full pipeline for one fixture from JSON files",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var match models.MatchContext
		if err := readJSONFile(args[0], &match); err != nil {
			return fmt.Errorf("failed to read fixture: %w", err)
		}

		var oddsEntries []models.OddsEntry
		if len(args) > 1 {
			if err := readJSONFile(args[1], &oddsEntries); err != nil {
				return fmt.Errorf("failed to read odds: %w", err)
			}
		}

		quiet := logrus.New()
		quiet.SetOutput(io.Discard)

		eng := engine.NewEngine(engine.DefaultConfig(), nil, quiet)
		result := eng.ProcessMatch(match, oddsEntries)
		printJSON(result)
		return nil
	},
}

func init() {
	kellyCmd.Flags().Float64Var(&prob, "prob", 0, "win probability (0-1)")
	kellyCmd.Flags().Float64Var(&odds, "odds", 0, "decimal odds")
	kellyCmd.Flags().Float64Var(&bankroll, "bankroll", 0, "optional bankroll to convert the fraction to a stake")
	kellyCmd.MarkFlagRequired("prob")
	kellyCmd.MarkFlagRequired("odds")

	clvCmd.Flags().Float64Var(&prob, "prob", 0, "model probability (0-1)")
	clvCmd.Flags().Float64Var(&odds, "odds", 0, "current decimal odds")
	clvCmd.Flags().IntVar(&books, "books", 1, "number of bookmakers quoting the market")
	clvCmd.MarkFlagRequired("prob")
	clvCmd.MarkFlagRequired("odds")

	rootCmd.AddCommand(kellyCmd, clvCmd, matchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func readJSONFile(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func printJSON(v interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(v)
}
