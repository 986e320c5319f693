// Package report writes the pass/fail and numerics summaries of a batch and
// reads numerics summaries back for re-plotting.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/spektr-org/artcheck/engine"
)

// ============================================================================
// REPORT WRITER
// ============================================================================
// Layout of both files, repeated per input file:
//
//	<input path>
//	<header>
//	<row>           one per check (pass/fail) or observation (numerics)
//	<blank line>
//
// Fields are tab separated. Files are truncated on open, never appended.
// ============================================================================

const (
	passFailStem = "check_summary_passfail"
	numericsStem = "check_summary_numerics"
)

// Run pairs an input file with its evaluation.
type Run struct {
	File       string
	Evaluation *engine.Evaluation
}

// FileNames are the two report paths of one batch.
type FileNames struct {
	PassFail string
	Numerics string
}

// Names returns the report paths in dir, suffixed with the DEMSTR when the
// demographic filter is active.
func Names(dir string, dem engine.Demographic, filtered bool) FileNames {
	suffix := ""
	if filtered {
		suffix = dem.Suffix()
	}
	return FileNames{
		PassFail: filepath.Join(dir, passFailStem+suffix+".txt"),
		Numerics: filepath.Join(dir, numericsStem+suffix+".txt"),
	}
}

// Writer serializes evaluations into the two report files.
type Writer struct {
	names  FileNames
	logger *zap.Logger
}

// NewWriter creates a writer for the given report paths.
func NewWriter(names FileNames, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{names: names, logger: logger}
}

// Names returns the paths the writer targets.
func (w *Writer) Names() FileNames { return w.names }

// Write creates (or truncates) both report files and writes every run.
func (w *Writer) Write(runs []Run) error {
	if err := w.writeFile(w.names.PassFail, runs, engine.BuildPassFailTable); err != nil {
		return err
	}
	if err := w.writeFile(w.names.Numerics, runs, engine.BuildNumericsTable); err != nil {
		return err
	}
	w.logger.Info("reports written",
		zap.String("passfail", w.names.PassFail),
		zap.String("numerics", w.names.Numerics),
		zap.Int("runs", len(runs)))
	return nil
}

type tableBuilder func(title string, eval *engine.Evaluation) *engine.TableData

func (w *Writer) writeFile(path string, runs []Run, build tableBuilder) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close report: %w", cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	for _, run := range runs {
		if err := WriteTable(bw, build(run.File, run.Evaluation)); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriteTable writes one block: title line, header line, rows, blank line.
func WriteTable(w io.Writer, table *engine.TableData) error {
	if _, err := fmt.Fprintln(w, table.Title); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Join(table.Columns, "\t")); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
