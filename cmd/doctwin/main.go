// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/doctwin"
	"github.com/poiesic/doctwin/ai"
	"github.com/poiesic/doctwin/api"
)

func main() {
	// Missing .env is fine; flags and real env still apply.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "doctwin",
		Usage: "Document ingestion pipeline for retrieval workloads",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"DOCTWIN_LOG_LEVEL"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the ingestion HTTP service",
				Action: serveCommand,
				Flags: append(serviceFlags(),
					&cli.StringFlag{
						Name:    "addr",
						Usage:   "Listen address",
						Value:   ":8080",
						EnvVars: []string{"DOCTWIN_ADDR"},
					},
				),
			},
			{
				Name:      "ingest",
				Usage:     "Upload a local file and process it to completion",
				ArgsUsage: "<path>",
				Action:    ingestCommand,
				Flags: append(serviceFlags(),
					&cli.StringFlag{
						Name:     "tenant",
						Usage:    "Tenant identifier",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "project",
						Usage:    "Project identifier",
						Required: true,
					},
				),
			},
			{
				Name:      "status",
				Usage:     "Print the processing status of a file",
				ArgsUsage: "<file-id>",
				Action:    statusCommand,
				Flags:     serviceFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serviceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "data-dir",
			Aliases: []string{"d"},
			Usage:   "Directory holding the database and blob store",
			Value:   "./data",
			EnvVars: []string{"DOCTWIN_DATA_DIR"},
		},
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"DOCTWIN_EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "embeddinggemma",
			EnvVars: []string{"DOCTWIN_EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "enrichment-host",
			Usage:   "Enrichment service host URL (defaults to embedding-host)",
			EnvVars: []string{"DOCTWIN_ENRICHMENT_HOST"},
		},
		&cli.StringFlag{
			Name:    "enrichment-model",
			Usage:   "Enrichment model name",
			Value:   "qwen2.5:3b",
			EnvVars: []string{"DOCTWIN_ENRICHMENT_MODEL"},
		},
		&cli.StringFlag{
			Name:    "docintel-endpoint",
			Usage:   "Document intelligence service endpoint",
			EnvVars: []string{"DOCTWIN_DOCINTEL_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:    "docintel-key",
			Usage:   "Document intelligence API key",
			EnvVars: []string{"DOCTWIN_DOCINTEL_KEY"},
		},
	}
}

func newService(c *cli.Context) (*doctwin.Service, error) {
	endpoint := c.String("docintel-endpoint")
	if endpoint == "" {
		return nil, fmt.Errorf("docintel-endpoint is required")
	}

	embeddingHost := c.String("embedding-host")
	enrichmentHost := c.String("enrichment-host")
	if enrichmentHost == "" {
		enrichmentHost = embeddingHost
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(embeddingHost),
		ai.WithEnrichmentHost(enrichmentHost),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithEnrichmentModel(c.String("enrichment-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	return doctwin.NewService(c.String("data-dir"),
		doctwin.WithAIConfig(aiConfig),
		doctwin.WithDocumentIntelligence(endpoint, c.String("docintel-key")),
	)
}

func serveCommand(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Re-drive anything a previous run left mid-stage.
	recovered, err := svc.Recover(ctx)
	if err != nil {
		return fmt.Errorf("recovery sweep failed: %w", err)
	}
	if recovered > 0 {
		slog.Info("recovered stuck files", "count", recovered)
	}

	server := &http.Server{
		Addr:    c.String("addr"),
		Handler: api.NewServer(svc).Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one file path")
	}
	path := c.Args().First()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := context.Background()
	file, err := svc.Upload(ctx, doctwin.UploadRequest{
		TenantID:  c.String("tenant"),
		ProjectID: c.String("project"),
		Filename:  filepath.Base(path),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	if err := svc.Process(ctx, file.ID); err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	final, err := svc.GetFile(ctx, file.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "File ID: %s\n", final.ID)
	fmt.Fprintf(os.Stderr, "Status: %s\n", final.Status)
	fmt.Fprintf(os.Stderr, "Chunks: %d\n", final.TotalChunks)
	if final.LastError != "" {
		fmt.Fprintf(os.Stderr, "Last error: %s\n", final.LastError)
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one file id")
	}

	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	file, err := svc.GetFile(context.Background(), c.Args().First())
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(file)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
