// Command listmodels prints the Gemini models visible to GEMINI_API_KEY and
// whether each supports generateContent, for every API version the scorer uses.
//
//	go run ./cmd/listmodels [-versions v1,v1beta] [-all]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"resume-scorer/internal/llm/gemini"
	"resume-scorer/internal/shared/config"
)

func main() {
	versions := flag.String("versions", "v1,v1beta", "comma separated API versions")
	all := flag.Bool("all", false, "include models without generateContent")
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout")
	flag.Parse()

	cfg := config.Load()
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		fmt.Fprintln(os.Stderr, "GEMINI_API_KEY is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	factory, err := gemini.NewFactory(cfg.GeminiAPIKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create client: %v\n", err)
		os.Exit(1)
	}

	failed := false
	for _, version := range strings.Split(*versions, ",") {
		version = strings.TrimSpace(version)
		if version == "" {
			continue
		}
		models, err := factory.ListModels(ctx, version)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", version, err)
			failed = true
			continue
		}
		printModels(os.Stdout, version, models, *all)
	}
	if failed {
		os.Exit(1)
	}
}

func printModels(w io.Writer, version string, models []gemini.ModelInfo, all bool) {
	fmt.Fprintf(w, "== %s ==\n", version)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tGENERATE\tINPUT LIMIT\tACTIONS")
	for _, m := range models {
		if !all && !m.SupportsGenerate() {
			continue
		}
		fmt.Fprintf(tw, "%s\t%t\t%d\t%s\n", m.Name, m.SupportsGenerate(), m.InputTokenLimit, strings.Join(m.SupportedActions, ","))
	}
	tw.Flush()
}
