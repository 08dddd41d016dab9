package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Gunvolt24/voltcart/pkg/validate"
)

// CLI-приложение для проверки файла позиций корзины перед импортом.
// Нормализованные позиции пишутся в stdout как JSONL, итог — в stderr.
func main() {
	inputPath := flag.String("in", "", "path to input (.json or .jsonl). If empty, reads from stdin.")
	formatStr := flag.String("format", "auto", "input format: auto|json|jsonl")
	flag.Parse()

	var (
		in     io.Reader = os.Stdin
		format           = validate.InputFormat(*formatStr)
	)
	if *inputPath == "" {
		// stdin вариант: считаем, что jsonl
		if format == validate.FormatAuto {
			format = validate.FormatJSONL
		}
	} else {
		f, err := os.Open(*inputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open: %v\n", err)
			os.Exit(2)
		}
		defer f.Close()
		in = f
		format = validate.DetectFormat(*inputPath, format)
	}

	res, err := validate.ImportItems(context.Background(), validate.NewCheckoutValidator(), in, format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "validation: %v (%s)\n", err, res)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	for _, it := range res.Items {
		if err := enc.Encode(it); err != nil {
			fmt.Fprintf(os.Stderr, "write: %v\n", err)
			os.Exit(1)
		}
	}

	if res.Invalid > 0 {
		fmt.Fprintf(os.Stderr, "validation failed (%s)\n", res)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "validation ok (%s)\n", res)
}
