// parse-statement parses a statement PDF offline and prints the category
// breakdown, without touching the LLM or the database. Useful for checking a
// new statement export against the anchor patterns.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"expenselens/internal/analysis"
	"expenselens/internal/parser"
	"expenselens/pkg/logger"

	"github.com/gen2brain/go-fitz"
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatal("usage: parse-statement <statement.pdf>")
	}
	path := flag.Arg(0)

	if err := logger.Init("warn"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	pages, err := extractPages(path)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", path, err)
	}

	extractor := parser.NewPaytmExtractor(logger.Get())
	meta, records := extractor.Extract(strings.Join(pages, "\n"), pages[0])
	breakdown := analysis.Aggregate(records)

	fmt.Printf("Name:      %s\n", meta.Name)
	fmt.Printf("Phone:     %s\n", meta.Phone)
	fmt.Printf("Email:     %s\n", meta.Email)
	fmt.Printf("Timeframe: %s\n", meta.Timeframe)
	if meta.TotalMoneyPaid != nil {
		fmt.Printf("Total paid:     %.2f\n", *meta.TotalMoneyPaid)
	}
	if meta.TotalMoneyReceived != nil {
		fmt.Printf("Total received: %.2f\n", *meta.TotalMoneyReceived)
	}
	fmt.Printf("Transactions:   %d\n\n", len(records))
	fmt.Print(analysis.RenderBreakdown(breakdown))
}

func extractPages(path string) ([]string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, pageText)
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	return pages, nil
}
