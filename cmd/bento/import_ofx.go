package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/bento/internal/cli"
	"github.com/Veraticus/bento/internal/common"
	"github.com/Veraticus/bento/internal/model"
	"github.com/Veraticus/bento/internal/ofx"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import bank or credit card transactions from OFX or QFX exports. Every
imported row is settled and paid from --wallet. Rows already in the ledger
are skipped.

Examples:
  bento import-ofx ~/Downloads/mandiri_maret.ofx --wallet "Livin (Mandiri)"
  bento import-ofx ~/Downloads/cimb_*.qfx --wallet "Octo (CIMB)" --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}
	cmd.Flags().StringP("wallet", "w", "", "payment method the rows are paid from (required)")
	cmd.Flags().BoolP("dry-run", "d", false, "preview import without saving")
	_ = cmd.MarkFlagRequired("wallet")
	return cmd
}

// expandFiles resolves glob patterns, keeping plain paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files found to import", common.ErrInvalidInput)
	}
	return files, nil
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	wallet, _ := cmd.Flags().GetString("wallet")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	handler := cli.NewInterruptHandler(out(cmd), "Nothing was written; run the import again.")
	ctx, stop := handler.HandleInterrupts(cmd.Context())
	defer stop()

	parser := ofx.NewParser(wallet, s.app.Categories)
	var all []model.Transaction
	for _, path := range files {
		txs, err := parseOFXFile(cmd, parser, path)
		if err != nil {
			return err
		}
		common.LogInfo("Parsed file", common.Fields{"file": filepath.Base(path), "transactions": len(txs)})
		all = append(all, txs...)
	}

	if dryRun {
		writeln(cmd, cli.RenderTable(transactionHeaders, transactionRows(all), 3))
		writeln(cmd, cli.FormatInfo(fmt.Sprintf("Dry run: %d transaction(s) from %d file(s)", len(all), len(files))))
		return nil
	}
	if len(all) == 0 {
		writeln(cmd, cli.FormatInfo("No transactions found"))
		return nil
	}

	bar := progressbar.NewOptions(len(all),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Importing"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	res, err := s.store.ImportTransactions(ctx, all, func(done, _ int) { _ = bar.Set(done) })
	_ = bar.Finish()
	if err != nil {
		if handler.WasInterrupted() {
			return nil
		}
		return err
	}
	writeln(cmd, cli.FormatSuccess(fmt.Sprintf("Imported %d transaction(s), skipped %d duplicate(s)", res.Added, res.Duplicates)))
	return nil
}

func parseOFXFile(cmd *cobra.Command, parser *ofx.Parser, path string) ([]model.Transaction, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	txs, err := parser.ParseFile(cmd.Context(), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return txs, nil
}
