package convert

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"workflow-codegen/api/pkg/n8n"
)

// HandleImportWorkflow stores a raw n8n workflow document and returns
// the stored record. A body that is not valid JSON is the only hard
// rejection; structural defects inside the workflow surface later as
// conversion warnings.
func (s *Service) HandleImportWorkflow(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	wf, err := n8n.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid workflow document")
		return
	}

	name := wf.Name
	if name == "" {
		name = "Untitled Workflow"
	}

	record, err := s.repo.Create(r.Context(), name, wf)
	if err != nil {
		slog.Error("Failed to store workflow", "name", name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	slog.Debug("Imported workflow", "id", record.ID, "name", name, "nodes", len(wf.Nodes))
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(record)
}

// HandleGetWorkflow loads a stored workflow and returns it as JSON.
func (s *Service) HandleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	slog.Debug("Getting workflow", "id", id)

	record, err := s.repo.Get(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get workflow", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "workflow not found")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(record)
}

// HandleConvertWorkflow runs the conversion pipeline over a stored
// workflow, persists the result, and returns it. Warnings are
// returned in-band; a workflow with structural defects still converts
// as far as possible.
func (s *Service) HandleConvertWorkflow(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	slog.Debug("Converting workflow", "id", id)

	record, err := s.repo.Get(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get workflow for conversion", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "workflow not found")
		return
	}

	result := Convert(record.Definition)
	result.ConversionID = uuid.New().String()
	result.WorkflowID = record.ID
	result.CreatedAt = time.Now().UTC()

	for _, warning := range result.Warnings {
		slog.Warn("Conversion warning", "workflow", id, "kind", warning.Kind, "detail", warning.Detail)
	}

	if err := s.repo.SaveConversion(r.Context(), result); err != nil {
		slog.Error("Failed to save conversion", "workflow", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
