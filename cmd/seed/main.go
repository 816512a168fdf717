package main

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"workflow-automation/backend/internal/config"
	"workflow-automation/backend/internal/logging"
	"workflow-automation/backend/internal/repository"
	"workflow-automation/backend/pkg/models"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := logging.NewLogger(cfg.LogLevel)

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pool.Close()

	store := repository.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to set up schema: %v", err)
	}

	// Skip anything already seeded.
	existing, err := store.ListWorkflows(ctx)
	if err != nil {
		log.Fatalf("Failed to list existing workflows: %v", err)
	}
	existingMap := make(map[string]bool)
	for _, w := range existing {
		existingMap[w.Name] = true
	}

	for _, wf := range demoWorkflows() {
		if existingMap[wf.Name] {
			logger.Info("Skipping existing workflow", "name", wf.Name)
			continue
		}
		if err := store.CreateWorkflow(ctx, wf); err != nil {
			log.Printf("Failed to create workflow %s: %v", wf.Name, err)
		} else {
			logger.Info("Seeded workflow", "name", wf.Name, "id", wf.ID)
		}
	}
	logger.Info("Seeding complete!")
}

func demoWorkflows() []*models.Workflow {
	digest := &models.Workflow{
		ID:          uuid.New().String(),
		Name:        "Daily Digest",
		Description: "Scrapes a news page, summarizes it, and emails the summary.",
		Status:      models.WorkflowStatusIdle,
		Tasks: []models.Task{
			{
				ID:   "scrape-news",
				Type: models.TaskTypeScraping,
				Name: "Scrape headlines",
				Config: map[string]any{
					"url":       "https://en.wikipedia.org/wiki/Ocean",
					"selectors": []string{"h1", "p"},
				},
				Position: models.Position{X: 80, Y: 120},
			},
			{
				ID:       "summarize",
				Type:     models.TaskTypeSummarization,
				Name:     "Summarize article",
				Config:   map[string]any{"max_length": 130, "min_length": 30},
				Position: models.Position{X: 360, Y: 120},
			},
			{
				ID:   "send-digest",
				Type: models.TaskTypeEmail,
				Name: "Send digest",
				Config: map[string]any{
					"recipient": "team@example.com",
					"subject":   "Daily digest",
				},
				Position: models.Position{X: 640, Y: 120},
			},
		},
		Connections: []models.Connection{
			{Source: "scrape-news", Target: "summarize"},
			{Source: "summarize", Target: "send-digest"},
		},
	}

	moderation := &models.Workflow{
		ID:          uuid.New().String(),
		Name:        "Image Alert",
		Description: "Classifies an image and emails the predictions.",
		Status:      models.WorkflowStatusIdle,
		Tasks: []models.Task{
			{
				ID:   "classify-image",
				Type: models.TaskTypeClassification,
				Name: "Classify image",
				Config: map[string]any{
					"image_url":            "https://example.com/cat.jpg",
					"confidence_threshold": 0.5,
				},
				Position: models.Position{X: 80, Y: 120},
			},
			{
				ID:   "send-alert",
				Type: models.TaskTypeEmail,
				Name: "Send alert",
				Config: map[string]any{
					"recipient": "alerts@example.com",
					"subject":   "Image classification result",
				},
				Position: models.Position{X: 360, Y: 120},
			},
		},
		Connections: []models.Connection{
			{Source: "classify-image", Target: "send-alert"},
		},
	}

	return []*models.Workflow{digest, moderation}
}
