package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ratebridge-backend/internal/domain"
	"ratebridge-backend/internal/usecase"
	"ratebridge-backend/pkg/logger"
	"ratebridge-backend/pkg/storage"
	"ratebridge-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type DeployHandler struct {
	orchestrator *usecase.MultiZoneOrchestrator
	progress     *usecase.ProgressTracker
	abort        *usecase.AbortFlag
	archive      *storage.R2Archive // nil when archiving is not configured
}

func NewDeployHandler(orchestrator *usecase.MultiZoneOrchestrator, progress *usecase.ProgressTracker, abort *usecase.AbortFlag, archive *storage.R2Archive) *DeployHandler {
	return &DeployHandler{
		orchestrator: orchestrator,
		progress:     progress,
		abort:        abort,
		archive:      archive,
	}
}

// TriggerDeployment runs a full orchestration pass synchronously. Clients
// poll the progress endpoint while this request is in flight.
func (h *DeployHandler) TriggerDeployment(w http.ResponseWriter, r *http.Request) {
	var opts domain.RunOptions
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	result, err := h.orchestrator.Run(r.Context(), opts)
	if err != nil {
		if errors.Is(err, domain.ErrRunInProgress) {
			utils.WriteError(w, http.StatusConflict, err.Error())
			return
		}
		if result == nil {
			utils.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		// A zone failed mid-run: the payload still bundles everything
		// processed so far plus the failing zone's diagnostic
		h.archiveResult(result)
		utils.WriteJSON(w, http.StatusInternalServerError, result)
		return
	}

	h.archiveResult(result)
	utils.WriteJSON(w, http.StatusOK, result)
}

// archiveResult stores the run report in R2, best-effort and off the request
// path. Dry runs produce no archive.
func (h *DeployHandler) archiveResult(result *domain.RunResult) {
	if h.archive == nil || result.DryRun {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		key := fmt.Sprintf("deployments/%s.json", result.RunID)
		if _, err := h.archive.UploadJSON(ctx, key, result); err != nil {
			logger.Get().Error().Err(err).Str("run_id", result.RunID).Msg("Failed to archive run report")
		}
	}()
}

// GetProgress serves the current run snapshot for pollers.
func (h *DeployHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, h.progress.Snapshot())
}

type abortReq struct {
	Reason string `json:"reason"`
}

// AbortDeployment sets the cooperative abort flag. The run stops at the next
// zone boundary; the current zone's in-flight mutation always completes.
func (h *DeployHandler) AbortDeployment(w http.ResponseWriter, r *http.Request) {
	var req abortReq
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if req.Reason == "" {
		req.Reason = "aborted by operator"
	}

	h.abort.Abort(req.Reason)
	h.progress.MarkAborted(req.Reason)
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
