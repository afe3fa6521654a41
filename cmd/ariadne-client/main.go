package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/bayleafwalker/ariadne/internal/analyzer"
	"github.com/bayleafwalker/ariadne/internal/reader"
	"github.com/bayleafwalker/ariadne/internal/server"
)

func main() {
	var target string
	var depSource string
	var vulnSource string
	var internal string
	var timeout time.Duration
	flag.StringVar(&target, "target", "127.0.0.1:50051", "gRPC server address")
	flag.StringVar(&depSource, "dep", "", "dependency source as <format>=<path>")
	flag.StringVar(&vulnSource, "vuln", "", "vulnerability source as <format>=<path>")
	flag.StringVar(&internal, "internal", "", "comma separated internal identifiers")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	flag.Parse()

	in, err := readInput(depSource, vulnSource)
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		panic(fmt.Errorf("dial %s: %w", target, err))
	}
	defer conn.Close()

	req, err := server.ToStruct(newRequest(strings.Split(internal, ","), in))
	if err != nil {
		panic(fmt.Errorf("encode request: %w", err))
	}

	out, err := server.NewAnalysisClient(conn).Analyze(ctx, req)
	if err != nil {
		fmt.Printf("Analyze error: %v\n", err)
		return
	}
	var resp server.Response
	if err := server.FromStruct(out, &resp); err != nil {
		fmt.Printf("Analyze decode error: %v\n", err)
		return
	}

	fmt.Printf("Analyze ok: artifacts=%d implicated=%d tiers=%d orphans=%d\n",
		resp.Stats.Artifacts, resp.Stats.Implicated, resp.Stats.Tiers, len(resp.OrphanFindings))
	for _, a := range resp.Artifacts {
		if a.Tier < 0 {
			continue
		}
		fmt.Printf("  tier %d  %s\n", a.Tier, a.Name)
	}
}

func readInput(depSource, vulnSource string) (analyzer.Input, error) {
	format, path, err := reader.ParseSource(depSource)
	if err != nil {
		return analyzer.Input{}, fmt.Errorf("-dep: %w", err)
	}
	deps, err := reader.ReadDependencies(format, path, logr.Discard())
	if err != nil {
		return analyzer.Input{}, err
	}
	format, path, err = reader.ParseSource(vulnSource)
	if err != nil {
		return analyzer.Input{}, fmt.Errorf("-vuln: %w", err)
	}
	findings, err := reader.ReadFindings(format, path, logr.Discard())
	if err != nil {
		return analyzer.Input{}, err
	}
	return analyzer.Input{Dependencies: deps, Findings: findings}, nil
}

// newRequest folds repeated findings for one coordinate into a single count.
func newRequest(ids []string, in analyzer.Input) server.Request {
	req := server.Request{
		InternalIdentifiers: ids,
		Findings:            make(map[string]float64, len(in.Findings)),
	}
	for _, d := range in.Dependencies {
		req.Dependencies = append(req.Dependencies, [2]string{d.Parent, d.Child})
	}
	for _, f := range in.Findings {
		req.Findings[f.Artifact] += float64(f.Count)
	}
	return req
}
