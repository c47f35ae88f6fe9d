package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

var (
	conf       = flag.String("conf", "", "YAML config file. Defaults apply when empty.")
	cartolas   = flag.String("cartolas", "", "Comma separated cuenta-corriente cartola files.")
	facturados = flag.String("facturados", "", "Comma separated billed card movement files.")
	nofact     = flag.String("nofacturados", "", "Comma separated unbilled card movement files.")
	pagos      = flag.String("pagos", "", "Booking-system payments export.")
	citas      = flag.String("citas", "", "Booking-system appointments export.")
	reservas   = flag.String("reservas", "reservas.xlsx", "Canonical booking table: read as prior if it exists, overwritten with the reconciled result.")
	outLedger  = flag.String("out", "consolidado.xlsx", "Consolidated ledger output file.")
	runlogPath = flag.String("db", defaultRunlogPath(), "Bolt file for the run journal.")
	showRuns   = flag.Bool("runs", false, "Print the run journal and exit.")
	debug      = flag.Bool("debug", false, "Additional debug information if set.")
	skipBayes  = flag.Bool("no-suggest", false, "Skip category suggestions for uncategorized rows.")
)

func defaultRunlogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "runs.db"
	}
	return filepath.Join(home, ".conciliador", "runs.db")
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// bookingInputs reports whether the booking pipeline should run. The two
// exports only make sense together; one without the other is a mistyped
// invocation, not a smaller run.
func bookingInputs(pagos, citas string) (bool, error) {
	switch {
	case pagos != "" && citas != "":
		return true, nil
	case pagos == "" && citas == "":
		return false, nil
	}
	return false, errors.New("-pagos and -citas must be given together")
}

type statementFile struct {
	path string
	src  sourceType
}

func statementFiles() []statementFile {
	var files []statementFile
	for _, p := range splitList(*cartolas) {
		files = append(files, statementFile{p, srcChecking})
	}
	for _, p := range splitList(*facturados) {
		files = append(files, statementFile{p, srcBilled})
	}
	for _, p := range splitList(*nofact) {
		files = append(files, statementFile{p, srcUnbilled})
	}
	return files
}

func printFileResult(r fileResult) {
	if r.Err == "" {
		color.New(color.BgGreen, color.FgBlack).Printf(" OK     ")
	} else {
		color.New(color.BgRed, color.FgWhite).Printf(" FAILED ")
	}
	color.New(color.BgYellow, color.FgBlack).Printf(" %-12s ", r.Source)
	fmt.Printf(" %-40s %5d filas", r.Path, r.Rows)
	if r.Err != "" {
		fmt.Printf("  %s", r.Err)
	}
	fmt.Println()
}

func printRuns() {
	db, err := openRunLog(*runlogPath)
	checkf(err, "Unable to open run journal at %s", *runlogPath)
	defer db.Close()
	recs, err := iterateRunRecords(db)
	checkf(err, "Unable to read run journal")
	for _, rec := range recs {
		fmt.Printf("%s  %d txns, %d reservas\n", rec.When.Format(time.RFC3339), rec.Transactions, rec.Bookings)
		for _, f := range rec.Files {
			status := "ok"
			if f.Err != "" {
				status = "failed: " + f.Err
			}
			fmt.Printf("    %-12s %-40s %5d filas  %s\n", f.Source, f.Path, f.Rows, status)
		}
	}
}

// runStatements parses every declared statement file, consolidates and writes
// the ledger. A file that fails to parse is dropped in full and the run goes
// on; if every file failed the ledger would be silently empty, which is worse
// than failing loudly.
func runStatements(files []statementFile, cfg *config, rec *runRecord) {
	var batches [][]txn
	var deposits []txn
	failed := 0
	for _, f := range files {
		charges, deps, err := parseStatement(f.path, f.src, cfg)
		r := fileResult{Path: f.path, Source: f.src.String(), Rows: len(charges) + len(deps)}
		if err != nil {
			r.Err = err.Error()
			failed++
		} else {
			batches = append(batches, charges)
			deposits = append(deposits, deps...)
		}
		printFileResult(r)
		rec.Files = append(rec.Files, r)
	}
	assertf(failed < len(files), "Every statement file failed to parse; refusing to write an empty ledger.")

	ledger, stats := consolidate(batches, cfg)
	rec.Transactions = stats.Kept
	rec.Stats = stats

	checkf(writeTable(*outLedger, ledgerHeader, ledgerRows(ledger)), "Unable to write ledger to %s", *outLedger)

	fmt.Println()
	fmt.Printf("\t%d transacciones consolidadas en %s\n", stats.Kept, *outLedger)
	fmt.Printf("\t%d duplicados, %d montos negativos, %d excluidas\n",
		stats.DroppedDup, stats.DroppedNegative, stats.DroppedExcluded)
	if len(deposits) > 0 {
		var sum int64
		for _, d := range deposits {
			sum += d.Amount
		}
		fmt.Printf("\t%d abonos en cartola por $%d (no entran al consolidado)\n", len(deposits), sum)
	}

	if !*skipBayes {
		sugg := suggestCategories(ledger)
		if len(sugg) > 0 {
			fmt.Println()
			color.New(color.BgCyan, color.FgBlack).Printf(" Sugerencias para %d filas sin categoría ", len(sugg))
			fmt.Println()
			for _, s := range sugg {
				fmt.Printf("\t%-40s -> %s\n", s.Txn.Desc, s.Category)
			}
		}
	}
}

// runBookings merges the booking exports and reconciles them against the
// prior canonical table. Unlike the statement pipeline this one is all or
// nothing: a partial booking table misleads the financial reports downstream.
func runBookings(cfg *config, rec *runRecord) {
	payments, err := readTable(*pagos)
	checkf(err, "Unable to read payments export %s", *pagos)
	appointments, err := readTable(*citas)
	checkf(err, "Unable to read appointments export %s", *citas)

	fresh, unmatched, err := mergeBookings(payments, appointments, cfg)
	checkf(err, "Unable to merge booking exports")

	var prior []booking
	if _, statErr := os.Stat(*reservas); statErr == nil {
		prior, err = readBookingTable(*reservas)
		checkf(err, "Unable to read prior booking table %s", *reservas)
	}

	canonical := reconcile(prior, fresh)
	rec.Bookings = len(canonical)

	checkf(writeTable(*reservas, bookingHeader, bookingRows(canonical)), "Unable to write booking table to %s", *reservas)

	fmt.Println()
	fmt.Printf("\t%d reservas en %s (%d previas, %d nuevas)\n",
		len(canonical), *reservas, len(prior), len(fresh))
	if unmatched > 0 {
		fmt.Printf("\t%d filas sin contraparte en el join (descartadas)\n", unmatched)
	}
}

func journalRun(rec runRecord) {
	if err := os.MkdirAll(filepath.Dir(*runlogPath), 0755); err != nil {
		fmt.Printf("run journal disabled: %v\n", err)
		return
	}
	db, err := openRunLog(*runlogPath)
	if err != nil {
		fmt.Printf("run journal disabled: %v\n", err)
		return
	}
	defer db.Close()
	if err := writeRunRecord(db, rec); err != nil {
		fmt.Printf("unable to journal run: %v\n", err)
	}
}

func main() {
	flag.Parse()

	if *showRuns {
		printRuns()
		return
	}

	cfg, err := loadConfig(*conf)
	checkf(err, "Unable to load configuration")
	if *debug {
		fmt.Printf("config: rate=%v year=%s categories=%d groups=%d\n",
			cfg.USDRate, cfg.FiscalYear, len(cfg.Categories), len(cfg.Groups))
	}

	files := statementFiles()
	haveBookings, err := bookingInputs(*pagos, *citas)
	checkf(err, "Incomplete booking inputs")
	if len(files) == 0 && !haveBookings {
		oerr("No input files given")
		os.Exit(1)
	}

	rec := runRecord{When: time.Now()}
	if len(files) > 0 {
		runStatements(files, cfg, &rec)
	}
	if haveBookings {
		runBookings(cfg, &rec)
	}

	journalRun(rec)
}
