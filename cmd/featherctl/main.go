package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/akmonengine/featherserver/internal/config"
	"github.com/akmonengine/featherserver/internal/logging"
	"github.com/akmonengine/featherserver/internal/runner"
	"github.com/akmonengine/featherserver/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	configFile string
	frames     int
	plotBodies []string
	logLevel   string
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	enterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	exitStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "featherctl",
		Short:         "drive a physics scene through the frame protocol",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level")

	runCmd := &cobra.Command{
		Use:   "run [scene.yaml]",
		Short: "load a scene and step it",
		Args:  cobra.ExactArgs(1),
		RunE:  runScene,
	}
	runCmd.Flags().IntVar(&frames, "frames", 0, "frames to step (default: the scene's)")
	runCmd.Flags().StringSliceVar(&plotBodies, "plot", nil, "bodies whose height is plotted")

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "print the effective config, or write it to path",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeConfig,
	}

	rootCmd.AddCommand(runCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		return config.Save(args[0], cfg)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()

	scene, err := config.LoadScene(args[0])
	if err != nil {
		return err
	}
	n := scene.Frames
	if frames > 0 {
		n = frames
	}
	if n <= 0 {
		n = cfg.Physics.TickRate
	}

	srv := server.New(cfg.Physics, logger)
	srv.Init()
	defer srv.Finish()

	world, err := runner.Build(srv, scene, logger)
	if err != nil {
		return err
	}
	result, err := world.Run(n, cfg.Physics.TimeStep())
	if err != nil {
		return err
	}

	logger.Debug("process info",
		zap.Int("active_objects", srv.GetProcessInfo(server.ProcessInfoActiveObjects)),
		zap.Int("collision_pairs", srv.GetProcessInfo(server.ProcessInfoCollisionPairs)))

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, summary(args[0], cfg.Physics, result))
	for _, name := range plotBodies {
		heights, ok := result.Heights[name]
		if !ok {
			return fmt.Errorf("no body named %q", name)
		}
		fmt.Fprintln(out, asciigraph.Plot(heights,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" height"),
		))
		fmt.Fprintln(out)
	}

	return nil
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

func summary(path string, physics config.Physics, result *runner.Result) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("featherctl · " + path))
	b.WriteString("\n")
	b.WriteString(row("frames", fmt.Sprintf("%d @ %d Hz", result.Frames, physics.TickRate)) + "\n")
	b.WriteString(row("substeps", fmt.Sprint(physics.Substeps)) + "\n")

	perFrame := 0.0
	if result.Frames > 0 {
		perFrame = float64(result.Elapsed.Microseconds()) / float64(result.Frames)
	}
	b.WriteString(row("elapsed", fmt.Sprintf("%v (%.0fµs/frame)", result.Elapsed.Round(time.Microsecond), perFrame)) + "\n")

	peak := 0
	for _, c := range result.Contacts {
		peak = max(peak, c)
	}
	b.WriteString(row("peak contacts", fmt.Sprint(peak)) + "\n\n")

	names := make([]string, 0, len(result.Final))
	for name := range result.Final {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := result.Final[name]
		b.WriteString(row(name, fmt.Sprintf("(%.3f, %.3f, %.3f)", p.X(), p.Y(), p.Z())) + "\n")
	}

	if len(result.Events) > 0 {
		b.WriteString("\n")
		for _, e := range result.Events {
			style := enterStyle
			if e.Status == server.AreaBodyRemoved {
				style = exitStyle
			}
			b.WriteString(row(fmt.Sprintf("frame %d", e.Frame),
				style.Render(fmt.Sprintf("%s %s %s", e.Object, e.Status, e.Area))) + "\n")
		}
	}

	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}
