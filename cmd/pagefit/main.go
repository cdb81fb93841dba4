package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gompdf/pagefit"
)

func main() {
	var (
		inputFile    string
		outputFile   string
		pdfFile      string
		maxHeight    float64
		width        float64
		padding      float64
		oracle       string
		chromePath   string
		autoDownload bool
		noSandbox    bool
		verbose      bool
		report       bool
	)

	defaults := pagefit.DefaultOptions()
	flag.StringVar(&inputFile, "input", "", "Input HTML or Markdown file path, or URL")
	flag.StringVar(&outputFile, "output", "", "Output HTML file path")
	flag.StringVar(&pdfFile, "pdf", "", "Optional PDF preview file path")
	flag.Float64Var(&maxHeight, "max-height", defaults.MaxHeight, "Page height budget in px")
	flag.Float64Var(&width, "width", defaults.PageWidth, "Page content width in px")
	flag.Float64Var(&padding, "padding", defaults.Padding, "Page padding in px")
	flag.StringVar(&oracle, "oracle", string(pagefit.OracleLayout), "Layout oracle: fpdf or chrome")
	flag.StringVar(&chromePath, "chrome-path", "", "Chrome or Chromium executable for -oracle chrome")
	flag.BoolVar(&autoDownload, "auto-download", false, "Download Chromium when no executable is found")
	flag.BoolVar(&noSandbox, "no-sandbox", false, "Disable the Chrome sandbox, needed when running as root")
	flag.BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&report, "report", false, "Print per-page fill ratios and diagnostics")
	flag.Parse()

	if inputFile == "" {
		fmt.Println("Error: input file is required")
		flag.Usage()
		os.Exit(1)
	}

	remote := strings.HasPrefix(inputFile, "http://") || strings.HasPrefix(inputFile, "https://") ||
		strings.HasPrefix(inputFile, "data:")
	if outputFile == "" {
		if remote {
			outputFile = "pages.html"
		} else {
			ext := filepath.Ext(inputFile)
			outputFile = inputFile[:len(inputFile)-len(ext)] + ".pages.html"
		}
	}

	opts := defaults
	opts.MaxHeight = maxHeight
	opts.PageWidth = width
	opts.Padding = padding
	opts.Engine = pagefit.OracleEngine(oracle)
	opts.ChromePath = chromePath
	opts.AutoDownload = autoDownload
	opts.NoSandbox = noSandbox
	opts.Debug = verbose
	paginator := pagefit.NewWithOptions(opts)

	var (
		result *pagefit.Result
		err    error
	)
	if remote {
		result, err = paginator.SplitURL(inputFile)
	} else {
		result, err = paginator.SplitFile(inputFile)
	}
	if err != nil {
		fmt.Printf("Error paginating %s: %v\n", inputFile, err)
		os.Exit(1)
	}

	if err := paginator.WriteHTMLFile(result, outputFile); err != nil {
		fmt.Printf("Error writing pages: %v\n", err)
		os.Exit(1)
	}
	if pdfFile != "" {
		if err := paginator.RenderPDFFile(result, pdfFile); err != nil {
			fmt.Printf("Error rendering preview: %v\n", err)
			os.Exit(1)
		}
	}

	if report {
		printReport(result, maxHeight)
	} else if result.HasOverflow() {
		for _, o := range result.Report {
			fmt.Printf("Overflow: %s\n", o)
		}
	}

	if verbose {
		fmt.Printf("Successfully split %s into %d pages: %s\n", inputFile, len(result.Pages), outputFile)
	}
}

func printReport(result *pagefit.Result, maxHeight float64) {
	layout := "single column"
	if result.TwoColumn {
		layout = "two columns"
	}
	fmt.Printf("%d pages (%s), budget %.0fpx\n", len(result.Pages), layout, maxHeight)
	for _, p := range result.Pages {
		fmt.Printf("  page %d: %.1fpx (%.1f%%)\n", p.Number, p.Height, 100*p.Fill)
	}
	for _, o := range result.Report {
		fmt.Printf("Overflow: %s\n", o)
	}
	for _, w := range result.Warnings {
		fmt.Printf("Warning: %s\n", w)
	}
	fmt.Printf("Measurements: %d oracle calls, %d cache hits, %d misses\n",
		result.Stats.OracleCalls, result.Stats.Hits, result.Stats.Misses)
}
