// Command matchcheck analyzes match expressions declared in YAML suite
// files: exhaustiveness, reachability, and pattern well-formedness.
//
// Usage:
//
//	matchcheck [flags] suite.yaml [suite.yaml ...]
//
// Exit status is 0 when every analysis completes without error-severity
// findings, 1 otherwise, and 2 for usage or load failures. With -strict,
// warning-severity findings (unreachable arms, redundant or-alternatives)
// also fail the run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/speakeasy-api/patmatch/checkexec"
	"github.com/speakeasy-api/patmatch/pkg/report"
	"github.com/speakeasy-api/patmatch/pkg/suite"
)

func main() {
	var (
		logLevel     = flag.String("log-level", "warn", "log level: debug, info, warn, error")
		strict       = flag.Bool("strict", false, "treat warnings as failures")
		maxWitnesses = flag.Int("max-witnesses", 8, "maximum uncovered-value witnesses per finding")
		nodeBudget   = flag.Int("node-budget", 200000, "analysis node budget per match expression")
		witnessYAML  = flag.Bool("witness-yaml", false, "emit uncovered-value witnesses as YAML on stdout")
		noColor      = flag.Bool("no-color", false, "disable colored output")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: matchcheck [flags] suite.yaml [suite.yaml ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	opts := checkexec.DefaultOptions()
	opts.LogLevel = *logLevel
	opts.MaxWitnesses = *maxWitnesses
	opts.NodeBudget = *nodeBudget

	printer := report.NewPrinter(os.Stdout)
	if *noColor {
		printer = printer.WithColor(false)
	}

	total, failed := 0, 0
	for _, path := range flag.Args() {
		s, err := suite.LoadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "matchcheck: %s: %v\n", path, err)
			os.Exit(2)
		}
		for _, out := range s.Run(context.Background(), opts) {
			total++
			if run(printer, path, out, *strict, *witnessYAML) {
				failed++
			}
		}
	}
	printer.Summary(total, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// run reports one outcome and says whether it counts as a failure.
func run(printer *report.Printer, path string, out suite.Outcome, strict, witnessYAML bool) bool {
	name := path + ": " + out.Name
	if out.Err != nil {
		fmt.Fprintf(os.Stderr, "matchcheck: %s: %v\n", name, out.Err)
		return true
	}

	findings := out.Findings
	if out.Result != nil {
		findings = out.Result.Findings
		printer.Print(name, out.Result)
		if witnessYAML {
			emitWitnesses(name, out.Result)
		}
	} else {
		printer.Print(name, &checkexec.CheckResult{Findings: findings, Exhaustive: len(findings) == 0})
	}

	for _, f := range findings {
		if f.Severity() == checkexec.SeverityError || strict {
			return true
		}
	}
	return false
}

// emitWitnesses writes uncovered-value witnesses as a YAML document, one
// sequence per non-exhaustive match, for downstream tooling.
func emitWitnesses(name string, res *checkexec.CheckResult) {
	for _, f := range res.Findings {
		if f.Kind != checkexec.FindingNonExhaustive {
			continue
		}
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, w := range f.Witnesses {
			seq.Content = append(seq.Content, w.ToYAML())
		}
		doc := &yaml.Node{Kind: yaml.MappingNode}
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			seq,
		)
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			fmt.Fprintf(os.Stderr, "matchcheck: encoding witnesses: %v\n", err)
		}
		enc.Close()
	}
}
