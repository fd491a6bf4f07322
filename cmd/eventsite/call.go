package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	"github.com/ict4events/eventsite/internal/db"
	"github.com/ict4events/eventsite/internal/params"
	"github.com/ict4events/eventsite/internal/render"
	"github.com/ict4events/eventsite/internal/spinner"
)

type callMode int

const (
	modeReader callMode = iota
	modeDict
	modeScalar
	modeNonQuery
)

type callFlags struct {
	proc   string
	mode   callMode
	copy   bool
	format render.Format
	prompt []string
	tokens []string
}

func (a *App) handleCall() {
	if len(os.Args) < 3 {
		printError("Usage: eventsite call <procedure> [name=value ...] [--dict|--scalar|--nonquery] [--copy]")
	}

	flags, err := parseCallFlags(os.Args[2:])
	if err != nil {
		printError("%v", err)
	}
	if err := a.call(context.Background(), flags, true); err != nil {
		printError("%v", err)
	}
}

func parseCallFlags(args []string) (callFlags, error) {
	flags := callFlags{format: render.FormatTSV}
	modes := 0

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--dict":
			flags.mode = modeDict
			modes++
		case arg == "--scalar":
			flags.mode = modeScalar
			modes++
		case arg == "--nonquery":
			flags.mode = modeNonQuery
			modes++
		case arg == "--copy" || arg == "-c":
			flags.copy = true
		case arg == "--format" || arg == "-f":
			if i+1 >= len(args) {
				return flags, fmt.Errorf("%s needs a value", arg)
			}
			i++
			format, err := render.ParseFormat(args[i])
			if err != nil {
				return flags, err
			}
			flags.format = format
		case strings.HasPrefix(arg, "--format="):
			format, err := render.ParseFormat(strings.TrimPrefix(arg, "--format="))
			if err != nil {
				return flags, err
			}
			flags.format = format
		case arg == "--param" || arg == "-p":
			if i+1 >= len(args) {
				return flags, fmt.Errorf("%s needs a parameter name", arg)
			}
			i++
			flags.prompt = append(flags.prompt, args[i])
		case strings.HasPrefix(arg, "--"):
			return flags, fmt.Errorf("unknown flag %s", arg)
		case flags.proc == "":
			flags.proc = arg
		default:
			flags.tokens = append(flags.tokens, arg)
		}
	}

	if flags.proc == "" {
		return flags, fmt.Errorf("no procedure given")
	}
	if modes > 1 {
		return flags, fmt.Errorf("--dict, --scalar and --nonquery are mutually exclusive")
	}
	return flags, nil
}

// resolveArgs merges typed arguments with the names the call still needs.
// Missing values are prompted for when interactive, otherwise reported.
func (a *App) resolveArgs(flags callFlags, interactive bool) ([]params.Arg, error) {
	named, positionals, err := params.ParseArgs(flags.tokens)
	if err != nil {
		return nil, err
	}
	if err := params.ValidateParamNames(named); err != nil {
		return nil, err
	}

	required := slices.Clone(flags.prompt)
	if body, ok := a.config.Database.Procedures[flags.proc]; ok {
		for _, name := range params.ExtractPlaceholders(body) {
			if !slices.Contains(required, name) {
				required = append(required, name)
			}
		}
	}

	args, missing, err := params.ResolveParameters(required, named, positionals)
	if err != nil {
		return nil, err
	}
	if len(missing) == 0 {
		return args, nil
	}
	if !interactive {
		return nil, fmt.Errorf("missing values for %s", strings.Join(missing, ", "))
	}

	values, err := params.CollectParameters(params.DisplayCall(flags.proc, args), missing, nil)
	if err != nil {
		return nil, err
	}
	return params.Fill(args, values), nil
}

func (a *App) call(ctx context.Context, flags callFlags, interactive bool) error {
	args, err := a.resolveArgs(flags, interactive)
	if err != nil {
		return err
	}

	store, logger, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	defer logger.Sync()

	dbParams := params.ToParams(args)
	start := time.Now()

	var (
		headers []string
		rows    [][]string
		pairs   [][2]string
	)
	err = spinner.Run(os.Stderr, flags.proc, func() error {
		switch flags.mode {
		case modeScalar:
			value, err := store.ExecuteScalar(ctx, flags.proc, dbParams...)
			if err != nil {
				return err
			}
			text := db.Value{Raw: value}.String()
			headers = []string{flags.proc}
			rows = [][]string{{text}}
			pairs = [][2]string{{flags.proc, text}}

		case modeNonQuery:
			res, err := store.ExecuteNonQueryResult(ctx, flags.proc, dbParams...)
			if err != nil {
				return err
			}
			headers, rows, pairs = nonQueryPairs(res)

		case modeDict:
			records, err := store.ExecuteReaderDict(ctx, flags.proc, dbParams...)
			if err != nil {
				return err
			}
			headers, rows = recordTable(records)

		default:
			rs, err := store.Query(ctx, flags.proc, dbParams...)
			if err != nil {
				return err
			}
			headers = rs.ColumnNames()
			for _, r := range rs.Strings() {
				rows = append(rows, []string(r))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if pairs != nil {
		render.KeyValue(a.out, pairs)
	} else if err := render.Table(a.out, headers, rows, time.Since(start)); err != nil {
		return err
	}

	if flags.copy {
		text, err := render.Export(flags.format, headers, rows)
		if err != nil {
			return err
		}
		if err := clipboard.WriteAll(text); err != nil {
			return fmt.Errorf("copying to clipboard: %w", err)
		}
		fmt.Fprintf(a.out, "Copied %d row(s) as %s\n", len(rows), flags.format)
	}
	return nil
}

func nonQueryPairs(res db.NonQueryResult) ([]string, [][]string, [][2]string) {
	var pairs [][2]string
	for _, p := range res.Params {
		if p.Direction.IsOutput() {
			pairs = append(pairs, [2]string{p.Name, p.Text()})
		}
	}
	pairs = append(pairs,
		[2]string{"rows affected", fmt.Sprint(res.RowsAffected)},
		[2]string{"status ok", fmt.Sprint(res.StatusOK())},
	)

	headers := make([]string, len(pairs))
	row := make([]string, len(pairs))
	for i, p := range pairs {
		headers[i], row[i] = p[0], p[1]
	}
	return headers, [][]string{row}, pairs
}

// recordTable lays records out with their keys sorted, since maps carry no
// column order.
func recordTable(records []db.Record) ([]string, [][]string) {
	seen := make(map[string]bool)
	var headers []string
	for _, rec := range records {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}
	sort.Strings(headers)

	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(headers))
		for j, h := range headers {
			row[j] = rec[h]
		}
		rows[i] = row
	}
	return headers, rows
}
