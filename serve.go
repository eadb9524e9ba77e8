package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"go-aduan/config"
	"go-aduan/cronjobs"
	"go-aduan/db"
	"go-aduan/detection"
	"go-aduan/geocode"
	"go-aduan/handlers"
	"go-aduan/intake"
	"go-aduan/mlmodel"
	"go-aduan/nlp"
	"go-aduan/routes"
	"go-aduan/summarization"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the ingestion/maintenance cron jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.ClientURL != "" {
		fmt.Println("CLIENT_URL: ", cfg.ClientURL)
	}

	engine := detection.New(cfg.Clustering)

	// Both stay nil without Firestore so their routes report 503.
	var store handlers.ClusterReader
	var maintainer handlers.Maintainer

	if cfg.FirebaseCredentials == "" {
		log.Println("FIREBASE_CREDENTIALS not set, running without persistence or cron jobs")
	} else {
		firestoreClient, err := db.InitFirestore(ctx, cfg.FirebaseCredentials)
		if err != nil {
			return fmt.Errorf("failed to initialize Firestore: %w", err)
		}
		defer db.CloseFirestore()

		fs := db.NewFirestoreStore(firestoreClient)
		jobs := &cronjobs.Jobs{
			Store:    fs,
			Engine:   engine,
			Source:   intake.NewBlueskySource(cfg.BlueskyHost),
			FeedURIs: cfg.FeedURIs,
		}

		enricher := &intake.Enricher{}
		if cfg.NaturalLanguageCredentials != "" {
			analyzer, err := nlp.NewCloudAnalyzer(ctx, cfg.NaturalLanguageCredentials)
			if err != nil {
				return fmt.Errorf("failed to create Natural Language client: %w", err)
			}
			defer analyzer.Close()
			enricher.Analyzer = analyzer
		}
		if cfg.MapsAPIKey != "" {
			geocoder, err := geocode.NewMapsGeocoder(cfg.MapsAPIKey, cfg.MapsRegion)
			if err != nil {
				return fmt.Errorf("failed to create Maps client: %w", err)
			}
			enricher.Geocoder = geocoder
		}
		if cfg.MLModelURL != "" {
			enricher.Classifier = mlmodel.NewClient(cfg.MLModelURL)
		}
		jobs.Enricher = enricher

		if cfg.OpenAIAPIKey != "" {
			fmt.Println("OPENAI_API_KEY loaded")
			jobs.Summarizer = summarization.NewSummarizer(cfg.OpenAIAPIKey)
		}

		scheduler, err := cronjobs.InitCronJobs(jobs, cfg.IngestSchedule, cfg.MaintenanceSchedule)
		if err != nil {
			return err
		}
		defer scheduler.Stop()

		store, maintainer = fs, jobs
	}

	r := routes.SetupRouter(engine, store, maintainer, cfg.ClientURL)
	if err := r.Run(":" + cfg.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
