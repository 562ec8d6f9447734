// Command reconcile runs the receipt/return calculator over a line file without the service.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/deepakg932/jwellery-app-crm-erp--sub002/internal/domain/reconciliation"
	"github.com/deepakg932/jwellery-app-crm-erp--sub002/pkg/logging"
)

// ErrBlocking is returned in strict mode when any line has a blocking validation error
var ErrBlocking = errors.New("blocking validation errors present")

type options struct {
	asJSON   bool
	xlsxPath string
	strict   bool
	logLevel string
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "reconcile <file|->",
		Short: "Reconcile received or returned lines against their ordered baseline",
		Long: `Reads a YAML or JSON document of the form

  items:
    - ref: R1
      trackingMode: COUNT
      unitRef: pcs
      ordered: 10
      count: 6
      unitCost: 100
  prior:
    R1: 2

and prints per-line baselines, outstanding amounts, validation errors and totals.
Use "-" to read the document from stdin.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(opts, args[0], stdin, stdout, stderr)
		},
	}

	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the result as JSON")
	cmd.Flags().StringVar(&opts.xlsxPath, "xlsx", "", "also write the result to an Excel workbook at this path")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit non-zero when blocking errors exist")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	return cmd
}

func runReconcile(opts *options, path string, stdin io.Reader, stdout, stderr io.Writer) error {
	logConfig := logging.DefaultConfig("reconcile")
	logConfig.Level = logging.ParseLevel(opts.logLevel)
	logConfig.Output = stderr
	logger := logging.New(logConfig)

	doc, err := readDocument(path, stdin)
	if err != nil {
		return err
	}

	result := reconciliation.Reconcile(doc.lineItems(), doc.fulfillments())
	logger.Debug("Reconciled document",
		"lines", len(result.Lines),
		"grandTotal", result.GrandTotal.String(),
		"blocking", result.Blocking,
	)

	if opts.asJSON {
		err = writeJSON(stdout, result)
	} else {
		err = writeTable(stdout, result)
	}
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	if opts.xlsxPath != "" {
		if err := writeWorkbook(opts.xlsxPath, result); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		logger.Info("Workbook written", "path", opts.xlsxPath)
	}

	if opts.strict && result.Blocking {
		return ErrBlocking
	}
	return nil
}

func main() {
	cmd := newRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
