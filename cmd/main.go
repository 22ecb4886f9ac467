package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	comet "github.com/hamza-berahma/comet-flowchart/pkg"
	"github.com/sanity-io/litter"
)

func main() {
	var (
		outDir  = flag.String("o", ".", "directory for the emitted artifacts")
		dump    = flag.Bool("dump", false, "pretty-print the AST to stdout")
		run     = flag.Bool("run", false, "interpret the program after translating")
		emitLL  = flag.Bool("ll", false, "also emit an LLVM module (numeric programs only)")
		archive = flag.String("archive", "", "record the run in the given SQLite archive")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: comet [flags] <source file>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	filename := flag.Arg(0)
	source, err := os.ReadFile(filename)
	if err != nil {
		fatal(err)
	}

	artifacts, err := comet.NewTranslator().TranslateFromReader(filename, strings.NewReader(string(source)))
	if err != nil {
		fatal(err)
	}

	if *dump {
		litter.Dump(artifacts.Program)
	}

	analyzer := comet.NewAnalyzer()
	analyzer.Do(artifacts.Program)
	for _, warning := range analyzer.Warnings() {
		fmt.Fprintln(os.Stderr, "warning:", warning)
	}

	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	write := func(ext, content string) {
		path := filepath.Join(*outDir, base+ext)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			fatal(err)
		}
	}

	write(".json", string(artifacts.JSON))
	write(".out.cmt", artifacts.DSL)
	write(".mmd", artifacts.Diagram.Mermaid())
	write(".dot", artifacts.Diagram.DOT())

	if *emitLL {
		mod, err := comet.BuildLLVM(artifacts.Program)
		if err != nil {
			fatal(err)
		}

		write(".ll", mod.String())
	}

	if *archive != "" {
		store, err := comet.OpenArchive(*archive)
		if err != nil {
			fatal(err)
		}
		defer store.Close()

		id, err := store.SaveRun(string(source), artifacts)
		if err != nil {
			fatal(err)
		}

		fmt.Println("archived run", id)
	}

	if *run {
		if err := comet.NewInterpreter(os.Stdin, os.Stdout).Run(artifacts.Program); err != nil {
			fatal(err)
		}
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
