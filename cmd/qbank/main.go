package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mind-engage/mindengage-qbank/internal/config"
	"github.com/mind-engage/mindengage-qbank/internal/db"
	"github.com/mind-engage/mindengage-qbank/internal/exam"
	"github.com/mind-engage/mindengage-qbank/internal/formats"
	"github.com/mind-engage/mindengage-qbank/internal/qbank"
	"github.com/mind-engage/mindengage-qbank/internal/qbank/parser"
	"github.com/mind-engage/mindengage-qbank/internal/qbank/sqlgen"
	"github.com/mind-engage/mindengage-qbank/internal/storage"
	syncx "github.com/mind-engage/mindengage-qbank/internal/sync"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// parseFlags are shared by every command that reads a question bank.
type parseFlags struct {
	key      string
	subject  string
	strategy string
	taxonomy string
	workers  int
	verbose  bool
}

func (f *parseFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.key, "key", "", "separate answer-key file")
	cmd.Flags().StringVar(&f.subject, "subject", "", "default subject for items without a usable label")
	cmd.Flags().StringVar(&f.strategy, "strategy", "auto", "segmentation strategy: auto, separator, shared-stem, generic")
	cmd.Flags().StringVar(&f.taxonomy, "taxonomy", "", "YAML subject taxonomy (default: built-in)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "parallel block extraction (0: QBANK_WORKERS)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
}

func (f *parseFlags) options() (parser.Options, error) {
	cfg := config.FromEnv()
	if f.taxonomy != "" {
		cfg.TaxonomyFile = f.taxonomy
	}
	if f.workers > 0 {
		cfg.Workers = f.workers
	}
	opts, err := cfg.ParserOptions()
	if err != nil {
		return opts, err
	}
	if f.subject != "" {
		opts.DefaultSubject = f.subject
	}
	if opts.Strategy, err = parser.ParseStrategy(f.strategy); err != nil {
		return opts, err
	}
	return opts, nil
}

func (f *parseFlags) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// request opens path (and the key file) for the importer. The returned
// function closes them.
func (f *parseFlags) request(path string) (qbank.Request, func(), error) {
	src, err := os.Open(path)
	if err != nil {
		return qbank.Request{}, nil, err
	}
	req := qbank.Request{Filename: path, Source: src}
	closers := []io.Closer{src}
	if f.key != "" {
		k, err := os.Open(f.key)
		if err != nil {
			src.Close()
			return qbank.Request{}, nil, err
		}
		req.Key, req.KeyFilename = k, f.key
		closers = append(closers, k)
	}
	return req, func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}, nil
}

// preview parses path without touching any store.
func (f *parseFlags) preview(cmd *cobra.Command, path string) (parser.Result, error) {
	opts, err := f.options()
	if err != nil {
		return parser.Result{}, err
	}
	svc, err := qbank.NewService(exam.NewInMemoryStore(), nil, nil, opts, f.logger(cmd))
	if err != nil {
		return parser.Result{}, err
	}
	req, done, err := f.request(path)
	if err != nil {
		return parser.Result{}, err
	}
	defer done()
	return svc.Preview(cmd.Context(), req)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "qbank",
		Short: "Question-bank importer",
		Long: `qbank turns loosely formatted exam question banks into validated records.

Sources: ` + strings.Join(formats.Extensions(), ", ") + `

Examples:
  qbank parse bank.docx
  qbank parse bank.txt --key answers.txt --json
  qbank sql bank.xlsx --out bank.sql
  qbank import bank.docx --title "2024 mock exam"`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(sqlCmd())
	rootCmd.AddCommand(subjectsCmd())
	return rootCmd
}

func parseCmd() *cobra.Command {
	var (
		pf      parseFlags
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a question bank and report records and diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := pf.preview(cmd, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printResult(out, res)
			return nil
		},
	}
	pf.register(cmd)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print records and diagnostics as JSON")
	return cmd
}

func printResult(w io.Writer, res parser.Result) {
	for i, q := range res.Questions {
		ord := q.Ordinal
		if ord == "" {
			ord = "-"
		}
		fmt.Fprintf(w, "%3d. [%s] #%s %s\n", i+1, q.Type, ord, firstLine(q.Stem))
		for j, o := range q.Options {
			letter, _ := parser.IndexLetter(j)
			fmt.Fprintf(w, "       %c. %s\n", letter, o)
		}
		fmt.Fprintf(w, "       answer: %s  subject: %s  difficulty: %d\n", q.Answer(), q.Subject, q.Difficulty)
	}
	d := res.Diagnostics
	fmt.Fprintf(w, "\nstrategy: %s  blocks: %d  questions: %d  failures: %d  warnings: %d\n",
		d.Strategy, d.Blocks, len(res.Questions), len(d.Failures), len(d.Warnings))
	if d.AnswerKey != nil {
		fmt.Fprintf(w, "answer key: %d entries, matched %d of %d\n", d.AnswerKey.Entries, d.AnswerKey.Matched, d.AnswerKey.Total)
	}
	for _, f := range d.Failures {
		fmt.Fprintf(w, "  failure block %d (#%s): %s %s\n", f.Block, f.Ordinal, f.Kind, f.Detail)
	}
	for _, x := range d.Warnings {
		fmt.Fprintf(w, "  warning block %d (#%s): %s %s\n", x.Block, x.Ordinal, x.Kind, x.Detail)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

func importCmd() *cobra.Command {
	var (
		pf       parseFlags
		title    string
		driver   string
		dsn      string
		blobPath string
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Parse a question bank and store it as an exam",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := pf.options()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			dbh, err := db.Open(ctx, db.Driver(driver), dsn)
			if err != nil {
				return fmt.Errorf("db open failed: %w", err)
			}
			defer dbh.Close()
			bs, err := storage.NewFSStore(blobPath)
			if err != nil {
				return fmt.Errorf("blob store: %w", err)
			}

			svc, err := qbank.NewService(exam.NewSQLStore(dbh, driver), bs, syncx.NewEventRepo(dbh), opts, pf.logger(cmd))
			if err != nil {
				return err
			}
			req, done, err := pf.request(args[0])
			if err != nil {
				return err
			}
			defer done()
			req.Title = title
			req.CreatedBy = "cli"
			rep, err := svc.Import(cmd.Context(), req)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		},
	}
	cfg := config.FromEnv()
	pf.register(cmd)
	cmd.Flags().StringVar(&title, "title", "", "exam title (default: file name)")
	cmd.Flags().StringVar(&driver, "db-driver", cfg.DBDriver, "sqlite or postgres")
	cmd.Flags().StringVar(&dsn, "db-dsn", cfg.DBDSN, "database DSN")
	cmd.Flags().StringVar(&blobPath, "blob-dir", cfg.BlobBasePath, "directory for source copies")
	return cmd
}

func sqlCmd() *cobra.Command {
	var (
		pf             parseFlags
		out            string
		table          string
		withDifficulty bool
	)
	cmd := &cobra.Command{
		Use:   "sql <file>",
		Short: "Render a question bank as INSERT statements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := pf.preview(cmd, args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			opts := sqlgen.Options{Table: table, WithDifficulty: withDifficulty, GeneratedAt: time.Now()}
			if err := sqlgen.Write(w, res.Questions, opts); err != nil {
				return err
			}
			d := res.Diagnostics
			fmt.Fprintf(cmd.ErrOrStderr(), "%d statements, %d failures, %d warnings\n", len(res.Questions), len(d.Failures), len(d.Warnings))
			return nil
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&table, "table", sqlgen.DefaultTable, "target table")
	cmd.Flags().BoolVar(&withDifficulty, "difficulty", false, "include a difficulty column")
	return cmd
}

func subjectsCmd() *cobra.Command {
	var (
		taxonomy string
		jsonOut  bool
	)
	cmd := &cobra.Command{
		Use:   "subjects",
		Short: "List canonical subjects and their aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if taxonomy == "" {
				taxonomy = config.FromEnv().TaxonomyFile
			}
			tax, err := config.LoadTaxonomy(taxonomy)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(w).Encode(tax)
			}
			for _, c := range tax.Canonical {
				marker := ""
				if c == tax.Default {
					marker = " (default)"
				}
				fmt.Fprintf(w, "%s%s\n", c, marker)
				for _, a := range tax.Aliases {
					if a.Subject == c {
						fmt.Fprintf(w, "  %s\n", a.Key)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&taxonomy, "taxonomy", "", "YAML subject taxonomy (default: built-in)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print as JSON")
	return cmd
}
