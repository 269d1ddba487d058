package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cortexa-labs/cortexa/internal/config"
	"github.com/cortexa-labs/cortexa/internal/domain"
	"github.com/cortexa-labs/cortexa/internal/repository"
	"github.com/cortexa-labs/cortexa/internal/service"
	"github.com/cortexa-labs/cortexa/internal/storage"
)

// IndexCmd creates the index command.
func IndexCmd() *cobra.Command {
	var (
		fromS3 bool
		probe  string
	)

	cmd := &cobra.Command{
		Use:   "index [paths...]",
		Short: "Build the knowledge index",
		Long:  "Chunks source documents, embeds every chunk, and rebuilds the vector index wholesale.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd.Context(), args, fromS3, probe)
		},
	}

	cmd.Flags().BoolVar(&fromS3, "s3", false, "Load documents from the configured S3 bucket instead of local paths")
	cmd.Flags().StringVar(&probe, "probe", "", "Run a test retrieval against the fresh index")

	return cmd
}

func runIndex(ctx context.Context, paths []string, fromS3 bool, probe string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	defer initTelemetry(cfg)()

	client, err := newEmbeddingClient(cfg)
	if err != nil {
		return err
	}

	var docs []domain.Document
	if fromS3 {
		if !cfg.HasS3() {
			return fmt.Errorf("--s3 requires CORTEXA_S3_ENDPOINT, credentials, and CORTEXA_S3_BUCKET")
		}
		source, err := storage.NewS3DocumentSource(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		}, "")
		if err != nil {
			return err
		}
		docs, err = source.Load(ctx)
		if err != nil {
			return err
		}
	} else {
		if len(paths) == 0 {
			return fmt.Errorf("provide at least one file or directory, or use --s3")
		}
		docs, err = storage.LoadLocal(paths)
		if err != nil {
			return err
		}
	}

	index, cleanup, err := openIndex(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer cleanup()

	indexer := service.NewIndexerServiceWithConfig(client, index, service.ChunkConfig{
		ChunkSize: cfg.ChunkSize,
		Overlap:   cfg.ChunkOverlap,
	})

	report, err := indexer.Build(ctx, docs)
	if err != nil {
		return err
	}

	if mem, ok := index.(*repository.MemoryIndex); ok {
		if err := mem.Save(cfg.IndexPath); err != nil {
			return err
		}
		fmt.Printf("Index written to %s\n\n", cfg.IndexPath)
	}

	printBuildReport(report)

	if probe != "" {
		retrieval := service.NewRetrievalService(client, index, cfg.RetrievalK)
		matches, err := retrieval.Retrieve(ctx, probe, cfg.RetrievalK)
		if err != nil {
			return err
		}
		fmt.Printf("\nProbe query: %s\n%s\n", probe, service.FormatMatches(matches))
	}

	return nil
}

func printBuildReport(report *service.BuildReport) {
	fmt.Printf("Build %s\n", report.BuildID)
	fmt.Printf("Total chunks: %d\n", report.TotalChunks)
	fmt.Printf("Chunk length: min %d, avg %d, max %d characters\n",
		report.MinLength, report.AvgLength, report.MaxLength)

	sources := make([]string, 0, len(report.BySource))
	for source := range report.BySource {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	fmt.Println("Chunks by source:")
	for _, source := range sources {
		fmt.Printf("  %s: %d\n", source, report.BySource[source])
	}
}
