package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gaby/telemdex/internal/catalog"
	"github.com/gaby/telemdex/internal/config"
	"github.com/gaby/telemdex/internal/fidelity"
	"github.com/gaby/telemdex/internal/fuseview"
	"github.com/gaby/telemdex/internal/isotime"
	"github.com/gaby/telemdex/internal/sample"
	"github.com/gaby/telemdex/internal/store"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "/config/config.json", "path to config file (json)")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	if err := config.EnsureConfigFile(cfgPath); err != nil {
		log.Fatalf("config bootstrap: %v", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validate: %v", err)
	}

	idx, err := store.Open(cfg.Paths.Base)
	if err != nil {
		log.Fatalf("store open: %v", err)
	}

	if cfg.Catalog.Enabled {
		cat, err := catalog.Open(cfg.CatalogPath())
		if err != nil {
			log.Fatalf("catalog open: %v", err)
		}
		defer cat.Close()
		idx.Observer = cat
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "ingest":
		runIngest(idx, rest)
	case "query":
		runQuery(idx, rest)
	case "datasets":
		runDatasets(idx, rest)
	case "stats":
		runStats(idx, cfg, rest)
	case "mount":
		runMount(idx, cfg, rest)
	default:
		fmt.Fprintf(os.Stderr, "telemdex: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `telemdex [-config path] <command> [args]

Commands:
  ingest   -dataset ID -file path.csv     write samples from a CSV file (timestamp,value)
  query    -dataset ID -start T -end T    print samples/aggregates for a window
  datasets [-q substring] [-max N]        list known dataset ids
  stats    [-dataset ID]                  print store counters and, if -dataset, catalog activity
  mount    -mountpoint path               mount the read-only debug view until interrupted

Timestamps accept epoch seconds or ISO-8601-ish local datetimes (2006-01-02T15:04:05).`)
}

func runIngest(idx *store.Index, args []string) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	dataset := fs.String("dataset", "", "dataset id")
	file := fs.String("file", "", "CSV file of timestamp,value rows (- for stdin)")
	fs.Parse(args)

	if *dataset == "" || *file == "" {
		log.Fatal("ingest: -dataset and -file are required")
	}

	samples, err := readSampleCSV(*file)
	if err != nil {
		log.Fatalf("ingest: %v", err)
	}
	if err := idx.Put(*dataset, samples); err != nil {
		log.Fatalf("ingest: %v", err)
	}
	fmt.Printf("ingested %d samples into %q\n", len(samples), *dataset)
}

func readSampleCSV(path string) ([]sample.Sample, error) {
	f := os.Stdin
	if path != "-" {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
	}

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = 2

	var out []sample.Sample
	for {
		row, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		ts, err := parseTimestamp(row[0])
		if err != nil {
			return nil, fmt.Errorf("timestamp %q: %w", row[0], err)
		}
		v, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", row[1], err)
		}
		out = append(out, sample.Sample{Timestamp: ts, Value: v})
	}
	return out, nil
}

func parseTimestamp(s string) (float64, error) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	return isotime.Parse(s)
}

func runQuery(idx *store.Index, args []string) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	dataset := fs.String("dataset", "", "dataset id")
	start := fs.String("start", "", "window start (epoch seconds or ISO-8601)")
	end := fs.String("end", "", "window end (epoch seconds or ISO-8601)")
	tierName := fs.String("tier", "", "force a fidelity tier (full,1,10,100,1000,10000,100000); default auto-selects")
	fs.Parse(args)

	if *dataset == "" || *start == "" || *end == "" {
		log.Fatal("query: -dataset, -start and -end are required")
	}
	startSec, err := parseTimestamp(*start)
	if err != nil {
		log.Fatalf("query: start: %v", err)
	}
	endSec, err := parseTimestamp(*end)
	if err != nil {
		log.Fatalf("query: end: %v", err)
	}

	var tierPtr *fidelity.Tier
	if *tierName != "" {
		t, err := parseTier(*tierName)
		if err != nil {
			log.Fatalf("query: %v", err)
		}
		tierPtr = &t
	}

	records, err := idx.Get(*dataset, startSec, endSec, tierPtr)
	if err != nil {
		log.Fatalf("query: %v", err)
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()
	if len(records) > 0 && records[0].Kind() == sample.KindAggregate {
		w.Write([]string{"bin_timestamp", "min", "mean", "max", "count"})
		for _, r := range records {
			a := r.Aggregate()
			w.Write([]string{
				strconv.FormatInt(a.BinTimestamp, 10),
				strconv.FormatFloat(a.Min, 'g', -1, 64),
				strconv.FormatFloat(a.Mean(), 'g', -1, 64),
				strconv.FormatFloat(a.Max, 'g', -1, 64),
				strconv.Itoa(a.Count),
			})
		}
	} else {
		w.Write([]string{"timestamp", "value"})
		for _, r := range records {
			s := r.Full()
			w.Write([]string{
				strconv.FormatFloat(s.Timestamp, 'g', -1, 64),
				strconv.FormatFloat(s.Value, 'g', -1, 64),
			})
		}
	}
}

func parseTier(name string) (fidelity.Tier, error) {
	for _, t := range fidelity.All {
		if t.Dir() == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown tier %q", name)
}

func runDatasets(idx *store.Index, args []string) {
	fs := flag.NewFlagSet("datasets", flag.ExitOnError)
	q := fs.String("q", "", "only ids containing this substring")
	max := fs.Int("max", 0, "cap result count (0 = no cap)")
	fs.Parse(args)

	ids, err := idx.Datasets(*q, *max)
	if err != nil {
		log.Fatalf("datasets: %v", err)
	}
	for _, id := range ids {
		fmt.Println(id)
	}
}

func runStats(idx *store.Index, cfg config.Config, args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	dataset := fs.String("dataset", "", "print catalog activity for this dataset")
	fs.Parse(args)

	fmt.Printf("puts: %d\n", idx.NumPuts())
	fmt.Printf("gets: %d\n", idx.NumGets())

	if free, err := catalog.FreeBytes(cfg.Paths.Base); err == nil {
		fmt.Printf("free bytes under %s: %d\n", cfg.Paths.Base, free)
	}

	if *dataset == "" {
		return
	}
	if !cfg.Catalog.Enabled {
		fmt.Println("catalog disabled; no per-dataset activity to report")
		return
	}
	cat, err := catalog.Open(cfg.CatalogPath())
	if err != nil {
		log.Fatalf("stats: catalog open: %v", err)
	}
	defer cat.Close()

	st, err := cat.Stats(*dataset)
	if err != nil {
		log.Fatalf("stats: %v", err)
	}
	fmt.Printf("dataset: %s\n", st.DatasetID)
	fmt.Printf("puts: %d (last %s)\n", st.PutCount, isotime.Format(float64(st.LastPutAt.Unix())))
	fmt.Printf("gets: %d (last %s)\n", st.GetCount, isotime.Format(float64(st.LastGetAt.Unix())))
}

func runMount(idx *store.Index, cfg config.Config, args []string) {
	fs := flag.NewFlagSet("mount", flag.ExitOnError)
	mountpoint := fs.String("mountpoint", cfg.FuseView.MountPoint, "where to mount the debug view")
	fs.Parse(args)

	if !cfg.FuseView.Enabled {
		log.Fatal("mount: fuseview disabled; set fuseview.enabled in the config")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	m, err := fuseview.Start(ctx, *mountpoint, idx)
	if err != nil {
		log.Fatalf("mount: %v", err)
	}
	defer m.Close()

	log.Printf("fuseview mounted at %s, press ctrl-C to unmount", *mountpoint)
	<-ctx.Done()
}
