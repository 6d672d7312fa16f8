// leadctl scores leads from a JSON file against a running prediction
// service and optionally exports the combined results.
//
//	leadctl -file leads.json
//	leadctl -file leads.json -export csv -out predictions.csv
//
// The service address comes from -url, or the LEADSCORE_CLIENT_BASE_URL
// environment variable (a .env file in the working directory is honored).
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/tmoesl/leadscore/pkg/client"
	"github.com/tmoesl/leadscore/pkg/schema"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	defaultURL := os.Getenv("LEADSCORE_CLIENT_BASE_URL")
	if defaultURL == "" {
		defaultURL = client.DefaultBaseURL
	}

	file := flag.String("file", "", "path to a JSON file with one lead object or an array of leads")
	url := flag.String("url", defaultURL, "prediction service base URL")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	export := flag.String("export", "", "export format: csv or json")
	out := flag.String("out", "", "export output path (defaults to stdout)")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		return fmt.Errorf("-file is required")
	}
	if *export != "" && *export != "csv" && *export != "json" {
		return fmt.Errorf("unsupported export format %q", *export)
	}

	records, err := readLeads(*file)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c := client.New(*url, client.WithTimeout(*timeout))
	pred, err := c.Predict(ctx, records)
	if err != nil {
		return err
	}

	rows, err := client.Combine(records, pred)
	if err != nil {
		return err
	}

	counts := map[string]int{}
	for i, row := range rows {
		fmt.Printf("lead %d: %s (p=%.3f)\n", i, row.Outcome, row.Probability)
		counts[row.Outcome]++
	}
	fmt.Printf("total: %d, CONVERT: %d, NOT CONVERT: %d\n",
		len(rows), counts["CONVERT"], counts["NOT CONVERT"])

	if *export == "" {
		return nil
	}
	return writeExport(*export, *out, rows)
}

// readLeads parses the input file and validates every lead locally before
// anything touches the network. A bare JSON object is treated as a
// one-element batch.
func readLeads(path string) ([]schema.LeadRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read leads file: %w", err)
	}

	var raws []map[string]interface{}
	if err := unmarshalNumbers(data, &raws); err != nil {
		var single map[string]interface{}
		if err2 := unmarshalNumbers(data, &single); err2 != nil {
			return nil, fmt.Errorf("%s is not a JSON lead object or array: %w", path, err)
		}
		raws = []map[string]interface{}{single}
	}

	records, err := schema.ValidateBatch(raws)
	if err != nil {
		return nil, fmt.Errorf("invalid leads in %s: %w", path, err)
	}
	return records, nil
}

func unmarshalNumbers(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func writeExport(format, path string, rows []client.Row) error {
	w := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == "csv" {
		return client.WriteCSV(w, rows)
	}
	return client.WriteJSON(w, rows)
}
