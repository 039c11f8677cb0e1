package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yanqian/solarcast/internal/domain/prediction"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCommand().ExecuteContext(ctx); err != nil {
		log.Fatalf("solarcast: %v", err)
	}
}

func rootCommand() *cobra.Command {
	serveCmd := serveCommand()
	rootCmd := &cobra.Command{
		Use:           "solarcast",
		Short:         "PV solar yield estimator",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveCmd.RunE,
	}
	rootCmd.AddCommand(serveCmd, estimateCommand())
	return rootCmd
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := initializeApp()
			if err != nil {
				return fmt.Errorf("failed to wire application: %w", err)
			}
			return app.Run(cmd.Context())
		},
	}
}

func estimateCommand() *cobra.Command {
	var (
		req      prediction.EstimateRequest
		lat, lon float64
	)
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Print a five-day energy estimate as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("lat") {
				req.Lat = &lat
			}
			if cmd.Flags().Changed("lon") {
				req.Lon = &lon
			}
			svc, err := initializeService()
			if err != nil {
				return fmt.Errorf("failed to wire service: %w", err)
			}
			resp, err := svc.Estimate(cmd.Context(), req)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.City, "city", "", "City name to geocode")
	flags.Float64Var(&lat, "lat", 0, "Latitude, used with --lon instead of --city")
	flags.Float64Var(&lon, "lon", 0, "Longitude, used with --lat instead of --city")
	flags.Float64Var(&req.Area, "area", 0, "Panel area in square metres")
	flags.Float64Var(&req.Efficiency, "efficiency", 0, "Panel efficiency as a fraction between 0 and 1")
	flags.StringVar(&req.Orientation, "orientation", "south", "Panel orientation")
	flags.StringVar(&req.Language, "lang", "", "Output language (en or cs)")
	_ = cmd.MarkFlagRequired("area")
	_ = cmd.MarkFlagRequired("efficiency")
	return cmd
}
