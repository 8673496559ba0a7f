package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/syncbridge"
	"github.com/agentstation/syncbridge/pkg/engine"
	"github.com/agentstation/syncbridge/pkg/logging"
	"github.com/agentstation/syncbridge/pkg/trackers"
)

func newRunCmd() *cobra.Command {
	var (
		fixturePath      string
		lastSyncFlag     string
		onlyKind         string
		autoMapUsers     bool
		clockOffsetHours int
		guardWindow      time.Duration
		watch            time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute reconciliation runs against a fixture environment",
		Long: `Run loads a YAML fixture describing both trackers' contents into the
in-memory adapters and executes a reconciliation run against them. With
--watch, runs repeat at the given interval until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fixture, err := loadFixture(fixturePath)
			if err != nil {
				return fmt.Errorf("loading fixture: %w", err)
			}

			local, remote, projects := fixture.build()
			if len(projects) == 0 {
				return fmt.Errorf("fixture defines no project mappings")
			}

			engineOpts := []engine.Option{
				engine.WithProjects(projects...),
				engine.WithAutoMapUsers(autoMapUsers),
				engine.WithClockOffsetHours(clockOffsetHours),
			}
			if onlyKind != "" {
				engineOpts = append(engineOpts, engine.WithOnlyKind(trackers.Kind(onlyKind)))
			}
			if guardWindow > 0 {
				engineOpts = append(engineOpts, engine.WithGuardWindow(guardWindow))
			}
			if fixture.Settings.IncidentType != "" || fixture.Settings.TaskType != "" {
				engineOpts = append(engineOpts, engine.WithItemTypes(fixture.Settings.IncidentType, fixture.Settings.TaskType))
			}
			if pm := fixture.propertyMap(); pm != nil {
				engineOpts = append(engineOpts, engine.WithProperties(pm))
			}

			opts := []syncbridge.Option{
				syncbridge.WithTrackers(local, remote),
				syncbridge.WithEngineOptions(engineOpts...),
			}
			if lastSyncFlag != "" {
				lastSync, err := time.Parse(time.RFC3339, lastSyncFlag)
				if err != nil {
					return fmt.Errorf("parsing --last-sync: %w", err)
				}
				opts = append(opts, syncbridge.WithInitialLastSync(lastSync))
			}

			bridge, err := syncbridge.New(opts...)
			if err != nil {
				return err
			}

			log := logging.Default()
			bridge.OnRunCompleted(func(result *engine.Result) {
				log.Info().Str("run_id", result.RunID).Msg(result.Summary())
			})

			result, err := bridge.Sync(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Summary())

			if watch <= 0 {
				if result.Status == engine.StatusError {
					return fmt.Errorf("run finished with errors")
				}
				return nil
			}

			if err := bridge.ScheduleOn(); err != nil {
				return err
			}
			defer func() { _ = bridge.ScheduleOff() }()

			<-cmd.Context().Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&fixturePath, "fixture", "", "path to the YAML fixture file (required)")
	cmd.Flags().StringVar(&lastSyncFlag, "last-sync", "", "watermark of the previous run (RFC3339)")
	cmd.Flags().StringVar(&onlyKind, "only", "", "restrict the run to one artifact kind (incidents, tasks)")
	cmd.Flags().BoolVar(&autoMapUsers, "auto-map-users", false, "auto-map users sharing the same login")
	cmd.Flags().IntVar(&clockOffsetHours, "clock-offset-hours", 0, "remote clock offset in whole hours")
	cmd.Flags().DurationVar(&guardWindow, "guard-window", 0, "conflict resolution guard window (default 5m)")
	cmd.Flags().DurationVar(&watch, "watch", 0, "repeat runs at this interval until interrupted")
	_ = cmd.MarkFlagRequired("fixture")

	return cmd
}
