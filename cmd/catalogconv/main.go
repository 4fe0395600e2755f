// Command catalogconv converts a JSON product catalog into the parquet layout
// the API server reads when CATALOG_PATH ends in ".parquet".
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/nyashahama/shopping-agent-backend/internal/catalog"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	in := flag.String("in", "data/productcategory.json", "JSON catalog to read")
	out := flag.String("out", "data/productcategory.parquet", "parquet file to write")
	flag.Parse()

	if err := convert(*in, *out); err != nil {
		logger.Error("catalogconv failed", "error", err)
		os.Exit(1)
	}
	logger.Info("catalog converted", "in", *in, "out", *out)
}

func convert(in, out string) error {
	if in == out {
		return fmt.Errorf("input and output are the same file: %s", in)
	}
	m, err := catalog.LoadJSON(in, "")
	if err != nil {
		return err
	}
	return catalog.WriteParquet(out, m.Items())
}
