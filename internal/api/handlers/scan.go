package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/cyberscan/scand/internal/orchestrator"
	"github.com/cyberscan/scand/internal/profiles"
)

// targetPattern mirrors the orchestrator's admission constraint so bad
// targets fail request validation before reaching it.
var targetPattern = regexp.MustCompile(`^[a-zA-Z0-9.\-:]+$`)

// ScanService is the orchestrator surface the handlers depend on.
type ScanService interface {
	Submit(ctx context.Context, req orchestrator.Request) error
	GetStatus(scanID string) (orchestrator.ScanState, error)
}

// ScanRequest is the POST /scan request body.
type ScanRequest struct {
	ScanID      string `json:"scan_id" validate:"required"`
	Target      string `json:"target" validate:"required,scan_target"`
	ScanType    string `json:"scan_type" validate:"required"`
	ScanSubtype string `json:"scan_subtype,omitempty"`
	Priority    string `json:"priority,omitempty"`
	CallbackURL string `json:"callback_url,omitempty" validate:"omitempty,url"`
}

// ScanResponse acknowledges an admitted scan.
type ScanResponse struct {
	Status   string           `json:"status"`
	ScanID   string           `json:"scan_id"`
	Message  string           `json:"message"`
	ScanInfo profiles.Profile `json:"scan_info"`
}

// ScanTypesResponse lists the available scan profiles.
type ScanTypesResponse struct {
	ScanTypes []profiles.Profile `json:"scan_types"`
}

// ScanHandler handles scan submission and status requests.
type ScanHandler struct {
	service  ScanService
	logger   *slog.Logger
	validate *validator.Validate
}

// NewScanHandler creates a scan handler backed by the given service.
func NewScanHandler(service ScanService, logger *slog.Logger) *ScanHandler {
	validate := validator.New()
	_ = validate.RegisterValidation("scan_target", func(fl validator.FieldLevel) bool {
		return targetPattern.MatchString(fl.Field().String())
	})

	return &ScanHandler{
		service:  service,
		logger:   logger,
		validate: validate,
	}
}

// SubmitScan handles POST /scan.
func (h *ScanHandler) SubmitScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error(), "VALIDATION")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest,
			fmt.Sprintf("invalid scan request: %v", err), "VALIDATION")
		return
	}

	profile, err := profiles.Resolve(req.ScanType)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest,
			fmt.Sprintf("invalid scan_type %q, valid types: %v", req.ScanType, profiles.IDs()),
			"PROFILE_UNKNOWN")
		return
	}

	err = h.service.Submit(r.Context(), orchestrator.Request{
		ScanID:      req.ScanID,
		Target:      req.Target,
		ScanType:    req.ScanType,
		ScanSubtype: req.ScanSubtype,
		Priority:    req.Priority,
		CallbackURL: req.CallbackURL,
	})
	if err != nil {
		h.logger.Warn("Scan admission rejected",
			"scan_id", req.ScanID,
			"target", req.Target,
			"error", err)
		writeError(w, h.logger, statusForError(err), err.Error(), codeOf(err))
		return
	}

	writeJSON(w, h.logger, http.StatusAccepted, ScanResponse{
		Status:   "started",
		ScanID:   req.ScanID,
		Message:  fmt.Sprintf("Scan started for target: %s", req.Target),
		ScanInfo: profile,
	})
}

// GetScanStatus handles GET /scan/{scan_id}/status.
func (h *ScanHandler) GetScanStatus(w http.ResponseWriter, r *http.Request) {
	scanID := mux.Vars(r)["scan_id"]
	if scanID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "scan_id is required", "VALIDATION")
		return
	}

	state, err := h.service.GetStatus(scanID)
	if err != nil {
		writeError(w, h.logger, statusForError(err), "Scan not found", codeOf(err))
		return
	}

	writeJSON(w, h.logger, http.StatusOK, state)
}

// ListScanTypes handles GET /scan-types.
func (h *ScanHandler) ListScanTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, ScanTypesResponse{ScanTypes: profiles.List()})
}
