package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/crewview/internal/feed"
	"github.com/Iron-Ham/crewview/internal/logging"
	"github.com/Iron-Ham/crewview/internal/monitor"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <log-file|->",
	Short: "Condense a finished crew log",
	Long: `Read a captured crew log and print its condensed summary.

The file is treated as the complete log of a successful run: agent states are
inferred, closing synthesis runs, and the summary view is printed. Use --all
to print the complete view first. Pass "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

var summarizeAll bool

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().BoolVar(&summarizeAll, "all", false, "also print the complete view")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open log: %w", err)
		}
		defer f.Close()
		in = f
	}
	lines, err := readLines(in)
	if err != nil {
		return err
	}

	mon, err := newMonitor(nil, cfg, logging.NopLogger(), sessionOptions{})
	if err != nil {
		return err
	}
	mon.Reset()
	mon.Apply(feed.Snapshot{Status: feed.StatusCompleted, Logs: lines})
	printState(cmd.OutOrStdout(), mon.State(), summarizeAll)
	return nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	return lines, nil
}

func printState(out io.Writer, st monitor.State, all bool) {
	if all {
		fmt.Fprintln(out, "Complete Log")
		for _, e := range st.Complete {
			fmt.Fprintf(out, "  %s: %s\n", e.Agent, e.Message)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "Agents")
	for _, a := range st.Agents {
		fmt.Fprintf(out, "  %-32s %s\n", a.Name, a.Status)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Summary")
	var key string
	for _, e := range st.Summary {
		if string(e.Key) != key {
			key = string(e.Key)
			fmt.Fprintf(out, "  %s\n", e.DisplayName)
		}
		mark := "•"
		if e.Completion {
			mark = "✓"
		}
		fmt.Fprintf(out, "    %s %s\n", mark, e.Description)
	}
}
