package api

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"

	"github.com/okian/challengeboard/internal/domain/model"
	"github.com/okian/challengeboard/internal/pipeline"
)

const (
	maxSubmissionBytes  = 64 << 10
	idempotencyKeyField = "Idempotency-Key"
)

// SubmissionDependencies defines what POST /submissions needs.
type SubmissionDependencies interface {
	Submit(ctx context.Context, raw model.RawSubmission) (pipeline.Outcome, error)
}

// SubmissionsHandler handles kiosk submissions.
type SubmissionsHandler struct {
	deps SubmissionDependencies
}

// NewSubmissionsHandler creates a new submissions handler.
func NewSubmissionsHandler(deps SubmissionDependencies) *SubmissionsHandler {
	return &SubmissionsHandler{deps: deps}
}

// HandlePostSubmission handles POST /submissions with a JSON or form body.
func (h *SubmissionsHandler) HandlePostSubmission(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_submission"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSubmissionBytes)
	raw, err := decodeSubmission(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if raw.SubmissionID == "" {
		raw.SubmissionID = r.Header.Get(idempotencyKeyField)
	}

	out, err := h.deps.Submit(r.Context(), raw)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func decodeSubmission(r *http.Request) (model.RawSubmission, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return model.RawSubmission{}, err
		}
		return model.SubmissionFromForm(r.PostForm), nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxSubmissionBytes); err != nil {
			return model.RawSubmission{}, err
		}
		return model.SubmissionFromForm(r.PostForm), nil
	default:
		var raw model.RawSubmission
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return model.RawSubmission{}, err
		}
		return raw, nil
	}
}
