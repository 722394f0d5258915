// Command judgebench evaluates an LLM judge against a labeled dataset and
// reports agreement metrics. It exits nonzero when the judge falls below
// the acceptance thresholds, which makes it usable as a CI gate.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ahrav/go-verdict/infrastructure/backend"
	"github.com/ahrav/go-verdict/infrastructure/observability"
	"github.com/ahrav/go-verdict/internal/judge"
	"github.com/ahrav/go-verdict/internal/metrics"
	"github.com/ahrav/go-verdict/internal/runner"
)

// apiKeyEnvVars maps provider names to the environment variable holding
// their credential.
var apiKeyEnvVars = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"cerebras":  "CEREBRAS_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"google":    "GOOGLE_API_KEY",
}

func main() {
	var (
		provider    = flag.String("provider", "openai", "Judgment provider (openai, cerebras, anthropic, google)")
		model       = flag.String("model", "", "Model to use (empty for the provider default)")
		datasetPath = flag.String("dataset", "", "Path to a YAML dataset of labeled question/response pairs")
		retries     = flag.Int("retries", judge.DefaultMaxRetries, "Total attempt budget per sample, including the first call")
		concurrency = flag.Int("concurrency", runner.DefaultConcurrency, "Number of samples evaluated in parallel")
		timeout     = flag.Duration("timeout", 60*time.Second, "Per-request timeout")
		confidence  = flag.Float64("confidence", 0.95, "Confidence level for the accuracy interval (0.90, 0.95, or 0.99)")
		minKappa    = flag.Float64("min-kappa", runner.DefaultMinKappa, "Minimum acceptable Cohen's kappa")
		minRecall   = flag.Float64("min-fail-recall", runner.DefaultMinFailRecall, "Minimum acceptable fail detection rate")
		metricsAddr = flag.String("metrics-addr", "", "Address to serve Prometheus metrics on during the run (empty disables)")
	)
	flag.Parse()

	if *datasetPath == "" {
		flag.Usage()
		log.Fatal("missing required flag: -dataset")
	}

	envVar, ok := apiKeyEnvVars[*provider]
	if !ok {
		log.Fatalf("unknown provider: %s", *provider)
	}
	apiKey := os.Getenv(envVar)
	if apiKey == "" {
		log.Fatalf("missing credential: set %s", envVar)
	}

	dataset, err := runner.LoadDataset(*datasetPath)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	var middleware []backend.Middleware
	if *metricsAddr != "" {
		collector := observability.NewPrometheusMetrics(prometheus.DefaultRegisterer)
		middleware = append(middleware, backend.MetricsMiddleware(collector))

		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Printf("metrics server: %v", err)
			}
		}()
	}

	be, err := backend.New(*provider, backend.Config{
		APIKey:     apiKey,
		Model:      *model,
		Timeout:    *timeout,
		Middleware: middleware,
	})
	if err != nil {
		log.Fatalf("Failed to create backend: %v", err)
	}

	judgeConfig := judge.DefaultConfig()
	judgeConfig.MaxRetries = *retries
	client, err := judge.NewClient(be, judgeConfig)
	if err != nil {
		log.Fatalf("Failed to create judge client: %v", err)
	}

	run, err := runner.New(client, runner.Config{
		Concurrency: *concurrency,
		Confidence:  metrics.ConfidenceLevel(*confidence),
	})
	if err != nil {
		log.Fatalf("Failed to create runner: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Evaluating judge %s/%s against %d samples (concurrency %d)\n\n",
		*provider, be.Model(), len(dataset.Samples), *concurrency)

	start := time.Now()
	outcome, err := run.Run(ctx, dataset)
	if err != nil {
		log.Fatalf("Evaluation run failed: %v", err)
	}

	fmt.Println(outcome.Report.String())
	fmt.Printf("Completed in %s\n", time.Since(start).Round(time.Millisecond))

	thresholds := runner.Thresholds{MinKappa: *minKappa, MinFailRecall: *minRecall}
	violations := thresholds.Check(outcome.Report)
	if len(violations) > 0 {
		fmt.Println("\nAcceptance thresholds NOT met:")
		for _, v := range violations {
			fmt.Printf("  - %s\n", v)
		}
		os.Exit(1)
	}
	fmt.Println("\nAcceptance thresholds met.")
}
