package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"techsupport-agent/config"
	"techsupport-agent/reasoning"
	"techsupport-agent/types"
	"techsupport-agent/utils"

	"github.com/spf13/cobra"
)

type askOptions struct {
	cpuTemp     float64
	gpuTemp     float64
	memoryUsage float64
	depth       string
	category    string
	debug       bool
	jsonOutput  bool
}

func (o askOptions) metrics() *types.SystemMetrics {
	m := types.SystemMetrics{
		CPUTemp:              o.cpuTemp,
		GPUTemp:              o.gpuTemp,
		MemoryUsage:          o.memoryUsage,
		SearchDepth:          types.SearchDepth(o.depth),
		DebugMode:            o.debug,
		UserSelectedCategory: o.category,
	}
	if m == (types.SystemMetrics{}) {
		return nil
	}
	return &m
}

type askOutput struct {
	Question string             `json:"question"`
	Answers  []types.Answer     `json:"answers"`
	Symptoms []string           `json:"symptoms"`
	Analysis reasoning.Analysis `json:"analysis"`
	Trace    *reasoning.Trace   `json:"trace,omitempty"`
}

func newAskCmd(opts *rootOptions) *cobra.Command {
	ask := askOptions{}
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a single question and print the ranked answers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(cmd, opts)
			if err != nil {
				return err
			}
			defer config.Cleanup()

			question, err := utils.SanitizeQuestion(strings.Join(args, " "), cfg.MaxQuestionLength)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			kb, err := loadKnowledge(ctx, cfg, store, logger)
			if err != nil {
				return err
			}
			engine, err := newEngine(cfg, kb, logger, nil)
			if err != nil {
				return err
			}

			res := engine.Reason(reasoning.Request{Question: question, Metrics: ask.metrics()})
			out := askOutput{
				Question: question,
				Answers:  res.Answers,
				Symptoms: res.Symptoms.Active(),
				Analysis: reasoning.Analyze(question, res.Answers),
				Trace:    res.Trace,
			}
			if ask.jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			return printAnswers(cmd.OutOrStdout(), out)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&ask.cpuTemp, "cpu-temp", 0, "CPU temperature in °C")
	flags.Float64Var(&ask.gpuTemp, "gpu-temp", 0, "GPU temperature in °C")
	flags.Float64Var(&ask.memoryUsage, "memory-usage", 0, "Memory usage in percent")
	flags.StringVar(&ask.depth, "depth", "", "Search depth: Basic, Standard or Comprehensive")
	flags.StringVar(&ask.category, "category", "", "Restrict matching to categories containing this text")
	flags.BoolVar(&ask.debug, "debug", false, "Include the reasoning trace")
	flags.BoolVar(&ask.jsonOutput, "json", false, "Print JSON instead of text")
	return cmd
}

func printAnswers(w io.Writer, out askOutput) error {
	var b strings.Builder
	for i, a := range out.Answers {
		fmt.Fprintf(&b, "%d. [%s] %s", i+1, a.Priority, a.Type)
		if a.Category != "" {
			fmt.Fprintf(&b, " (%s)", a.Category)
		}
		fmt.Fprintf(&b, " confidence=%s\n%s\n", a.Confidence, a.Content)
		for _, advice := range a.RuleAdvice {
			fmt.Fprintf(&b, "   %s\n", advice)
		}
		for _, step := range a.TroubleshootingSteps {
			fmt.Fprintf(&b, "   %s\n", step)
		}
		b.WriteString("\n")
	}
	if len(out.Symptoms) > 0 {
		fmt.Fprintf(&b, "Symptoms: %s\n", strings.Join(out.Symptoms, ", "))
	}
	if out.Trace != nil {
		trace, err := json.MarshalIndent(out.Trace, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, "Trace:\n%s\n", trace)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
