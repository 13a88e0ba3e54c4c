package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/bento/internal/cli"
	"github.com/Veraticus/bento/internal/export"
	"github.com/Veraticus/bento/internal/report"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a monthly statement",
	}
	cmd.PersistentFlags().StringP("period", "p", "", "month as YYYY-MM (default latest month with data)")
	cmd.PersistentFlags().StringP("output", "o", "", "output file or directory (default current directory)")

	cmd.AddCommand(&cobra.Command{
		Use:   "pdf",
		Short: "Write the bank-style PDF statement",
		RunE:  func(cmd *cobra.Command, _ []string) error { return runExport(cmd, "pdf") },
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "xlsx",
		Short: "Write the XLSX report workbook",
		RunE:  func(cmd *cobra.Command, _ []string) error { return runExport(cmd, "xlsx") },
	})
	return cmd
}

func runExport(cmd *cobra.Command, format string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	snap, err := s.store.Snapshot(cmd.Context())
	if err != nil {
		return err
	}
	p, err := periodFlag(cmd, snap.Transactions)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	var name string
	switch format {
	case "pdf":
		name = export.StatementFileName(p)
		err = export.WritePDF(&buf, report.BuildStatement(snap.Transactions, p), s.account())
	default:
		name = export.WorkbookFileName(p)
		err = export.WriteXLSX(&buf, export.NewReport(snap, p, s.app.Budget, s.app.MonitoringStart))
	}
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", format, err)
	}

	path := outputPath(cmd, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	writeln(cmd, cli.FormatSuccess(fmt.Sprintf("Wrote %s (%d bytes)", path, buf.Len())))
	return nil
}

// outputPath places name inside --output when it is a directory, or uses
// --output as the file path.
func outputPath(cmd *cobra.Command, name string) string {
	target, _ := cmd.Flags().GetString("output")
	if target == "" {
		return name
	}
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		return filepath.Join(target, name)
	}
	return target
}
