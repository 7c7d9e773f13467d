package main

import (
	"context"
	"delivery-map-client/internal/editor"
	"delivery-map-client/internal/platform/obs"
	"delivery-map-client/internal/render"
	"delivery-map-client/internal/services"
	"delivery-map-client/internal/tui"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	exportOut  string
	exportPlan bool

	rootCmd = &cobra.Command{
		Use:   "delivery-map",
		Short: "Edit a delivery graph and plan time-windowed routes",
		Long: `delivery-map is an interactive client for a delivery routing backend.
Place deliveries, edit edge travel times and visualize the computed route.`,
		SilenceUsage: true,
		RunE:         runInteractive,
	}

	scheduleCmd = &cobra.Command{
		Use:   "schedule",
		Short: "Compute a plan and print its schedule",
		Args:  cobra.NoArgs,
		RunE:  runSchedule,
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Write the graph as an SVG image",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}

	baseTimeCmd = &cobra.Command{
		Use:   "base-time [HH:MM]",
		Short: "Show or set the departure time",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBaseTime,
	}
)

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "graph.svg", "output file")
	exportCmd.Flags().BoolVar(&exportPlan, "plan", false, "compute a plan and draw the route")

	rootCmd.AddCommand(scheduleCmd, exportCmd, baseTimeCmd)
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	return obs.WithRequestID(ctx), cancel
}

func runInteractive(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	a, err := wire(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	// The terminal belongs to the UI; logs go to a file.
	f, err := tea.LogToFile(a.cfg.LogFile, "client")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	ed := editor.New(a.backend, a.plans)
	m := tui.NewModel(ctx, ed, tui.Options{
		Mapper:     a.cfg.Render.Terminal.Mapper(),
		EdgeOffset: a.cfg.Render.Terminal.EdgeOffset,
	})

	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := wire(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	snap, err := services.LoadSnapshot(ctx, a.backend)
	if err != nil {
		return err
	}

	out, err := a.plans.ComputePlan(ctx, services.GraphVersion(snap))
	if err != nil {
		return err
	}

	sched, err := services.DeriveSchedule(out.Plan, snap.Deliveries, snap.BaseTime, a.plans.Start)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), render.ScheduleTable(sched))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := wire(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	snap, err := services.LoadSnapshot(ctx, a.backend)
	if err != nil {
		return err
	}

	in := render.SceneInput{
		Nodes:      snap.Nodes,
		Edges:      snap.Edges,
		Deliveries: snap.Deliveries,
		Start:      a.plans.Start,
		BaseTime:   snap.BaseTime,
		Mode:       editor.ModeDelivery.String(),
		Mapper:     a.cfg.Render.SVG.Mapper(),
		EdgeOffset: a.cfg.Render.SVG.EdgeOffset,
	}

	if exportPlan {
		out, err := a.plans.ComputePlan(ctx, services.GraphVersion(snap))
		if err != nil {
			return err
		}
		in.Plan = &out.Plan
		in.FullPath = out.FullPath
		in.Order = out.Order
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := render.WriteSVG(f, render.BuildScene(in)); err != nil {
		_ = f.Close()
		return fmt.Errorf("export: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", exportOut)
	return nil
}

func runBaseTime(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := wire(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if len(args) == 1 {
		if err := a.backend.SetBaseTime(ctx, args[0]); err != nil {
			return err
		}
	}

	clock, err := a.backend.BaseTime(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), clock)
	return nil
}
