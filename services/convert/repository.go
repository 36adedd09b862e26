package convert

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workflow-codegen/api/pkg/n8n"
)

// Repository handles workflow and conversion persistence in PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// InitSchema creates the workflows and conversions tables if they do
// not exist.
func (r *Repository) InitSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS workflows (
			id         UUID PRIMARY KEY,
			name       TEXT NOT NULL DEFAULT '',
			definition JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("init workflows schema: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS conversions (
			id          UUID PRIMARY KEY,
			workflow_id UUID NOT NULL REFERENCES workflows(id),
			result      JSONB NOT NULL DEFAULT '{}',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("init conversions schema: %w", err)
	}
	return nil
}

// Seed inserts the sample order-processing workflow if it does not
// already exist.
func (r *Repository) Seed(ctx context.Context) error {
	defJSON, err := json.Marshal(sampleWorkflow)
	if err != nil {
		return fmt.Errorf("marshal seed workflow: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO workflows (id, name, definition)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, sampleWorkflowID, sampleWorkflow.Name, defJSON)
	if err != nil {
		return fmt.Errorf("seed workflow: %w", err)
	}
	return nil
}

// Create stores an imported workflow under a fresh id.
func (r *Repository) Create(ctx context.Context, name string, def *n8n.Workflow) (*WorkflowRecord, error) {
	defJSON, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal workflow: %w", err)
	}

	record := WorkflowRecord{ID: uuid.New().String(), Name: name, Definition: def}
	err = r.db.QueryRow(ctx, `
		INSERT INTO workflows (id, name, definition)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`, record.ID, name, defJSON).Scan(&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create workflow: %w", err)
	}
	return &record, nil
}

// Get retrieves a workflow by ID. Returns nil, nil if not found.
func (r *Repository) Get(ctx context.Context, id string) (*WorkflowRecord, error) {
	var record WorkflowRecord
	var defJSON []byte

	err := r.db.QueryRow(ctx, `
		SELECT id, name, definition, created_at, updated_at
		FROM workflows WHERE id = $1
	`, id).Scan(&record.ID, &record.Name, &defJSON, &record.CreatedAt, &record.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow: %w", err)
	}

	if err := json.Unmarshal(defJSON, &record.Definition); err != nil {
		return nil, fmt.Errorf("unmarshal workflow definition: %w", err)
	}
	return &record, nil
}

// SaveConversion persists one conversion run's full result.
func (r *Repository) SaveConversion(ctx context.Context, result *ConversionResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal conversion: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO conversions (id, workflow_id, result)
		VALUES ($1, $2, $3)
	`, result.ConversionID, result.WorkflowID, resultJSON)
	if err != nil {
		return fmt.Errorf("save conversion: %w", err)
	}
	return nil
}

// InitDB creates the schema and seeds initial data. Called from main on startup.
func InitDB(ctx context.Context, pool *pgxpool.Pool) error {
	repo := NewRepository(pool)
	if err := repo.InitSchema(ctx); err != nil {
		return err
	}
	return repo.Seed(ctx)
}

const sampleWorkflowID = "7f3a1c9e-5b20-4f6d-9a48-2d1e8c0b7a55"

// sampleWorkflow exercises every structural pattern the analyzer
// detects: a webhook trigger, an if branch with a merge point, and a
// splitInBatches loop with a back edge.
var sampleWorkflow = n8n.Workflow{
	Name: "Order Processing",
	Nodes: []n8n.Node{
		{
			Name: "Webhook", Type: "n8n-nodes-base.webhook", TypeVersion: 2,
			Position:   []float64{-180, 300},
			Parameters: map[string]any{"path": "orders", "httpMethod": "POST"},
		},
		{
			Name: "Check Status", Type: "n8n-nodes-base.if", TypeVersion: 2,
			Position: []float64{60, 300},
			Parameters: map[string]any{
				"conditions": map[string]any{
					"combinator": "and",
					"conditions": []any{
						map[string]any{
							"leftValue":  "={{ $json.status }}",
							"rightValue": "active",
							"operator":   map[string]any{"type": "string", "operation": "equals"},
						},
					},
				},
			},
		},
		{
			Name: "Format Order", Type: "n8n-nodes-base.set", TypeVersion: 3.4,
			Position: []float64{300, 180},
			Parameters: map[string]any{
				"assignments": map[string]any{
					"assignments": []any{
						map[string]any{
							"name":  "summary",
							"type":  "string",
							"value": "=Order {{ $json.id }} for {{ $('Webhook').json.body.customer }}",
						},
					},
				},
			},
		},
		{
			Name: "Notify Rejection", Type: "n8n-nodes-base.httpRequest", TypeVersion: 4.2,
			Position: []float64{300, 420},
			Parameters: map[string]any{
				"method": "POST",
				"url":    "={{ $env.NOTIFY_URL }}",
			},
			Credentials: map[string]any{
				"httpHeaderAuth": map[string]any{"id": "1", "name": "Notify API"},
			},
		},
		{
			Name: "Merge Paths", Type: "n8n-nodes-base.merge", TypeVersion: 3,
			Position: []float64{540, 300},
		},
		{
			Name: "Loop Items", Type: "n8n-nodes-base.splitInBatches", TypeVersion: 3,
			Position:   []float64{780, 300},
			Parameters: map[string]any{"batchSize": 10},
		},
		{
			Name: "Process Item", Type: "n8n-nodes-base.code", TypeVersion: 2,
			Position: []float64{1020, 180},
			Parameters: map[string]any{
				"jsCode": "return { processed: true };",
			},
		},
		{
			Name: "Done", Type: "n8n-nodes-base.noOp", TypeVersion: 1,
			Position: []float64{1020, 420},
		},
	},
	Connections: map[string]n8n.Connections{
		"Webhook": {
			"main": [][]n8n.Connection{{{Node: "Check Status", Type: "main", Index: 0}}},
		},
		"Check Status": {
			"main": [][]n8n.Connection{
				{{Node: "Format Order", Type: "main", Index: 0}},
				{{Node: "Notify Rejection", Type: "main", Index: 0}},
			},
		},
		"Format Order": {
			"main": [][]n8n.Connection{{{Node: "Merge Paths", Type: "main", Index: 0}}},
		},
		"Notify Rejection": {
			"main": [][]n8n.Connection{{{Node: "Merge Paths", Type: "main", Index: 1}}},
		},
		"Merge Paths": {
			"main": [][]n8n.Connection{{{Node: "Loop Items", Type: "main", Index: 0}}},
		},
		"Loop Items": {
			"main": [][]n8n.Connection{
				{{Node: "Done", Type: "main", Index: 0}},
				{{Node: "Process Item", Type: "main", Index: 0}},
			},
		},
		"Process Item": {
			"main": [][]n8n.Connection{{{Node: "Loop Items", Type: "main", Index: 0}}},
		},
	},
	Settings: map[string]any{"executionOrder": "v1"},
}
