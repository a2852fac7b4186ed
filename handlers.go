package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"prose-server/internal/types"
)

// Shared server state, wired in main.
var (
	reportStore       *ReportStore
	feedbackPublisher *FeedbackPublisher
	cacheConfig       CacheConfig
)

// shareBaseURL is the externally visible origin used for share links.
// BASE_URL wins; otherwise it is derived from the request.
func shareBaseURL(r *http.Request) string {
	if base := os.Getenv("BASE_URL"); base != "" {
		return strings.TrimSuffix(base, "/")
	}
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// submitAnalysisHandler accepts the backend's analysis payload and stores it
// under a content-derived report ID. Browsers are redirected to the report
// page; API clients asking for JSON get the ID and URL back.
func submitAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	log := LoggerFromContext(r.Context())

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "request body too large or unreadable", http.StatusRequestEntityTooLarge)
		return
	}

	var req types.AnalysisRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		log.Warn("analysis payload rejected", "error", err)
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Analysis == nil && len(req.StructuralBlocks) == 0 {
		http.Error(w, "analysis or structural_blocks required", http.StatusBadRequest)
		return
	}

	report := &types.Report{
		ID:               NewReportID(payload),
		Analysis:         req.Analysis,
		Content:          req.Content,
		StructuralBlocks: req.StructuralBlocks,
		Metadata:         req.Metadata,
		Compliance:       req.Compliance,
		Rewrite:          req.Rewrite,
		Refinement:       req.Refinement,
		CreatedAt:        time.Now().UnixMilli(),
	}
	if err := reportStore.SaveReport(r.Context(), report); err != nil {
		log.Error("report store failed", "report_id", report.ID, "error", err)
		http.Error(w, "could not store report", http.StatusInternalServerError)
		return
	}

	log.Info("report stored", "report_id", report.ID, "blocks", len(report.StructuralBlocks))
	reportURL := "/html/report/" + report.ID
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": report.ID, "url": reportURL})
		return
	}
	http.Redirect(w, r, reportURL, http.StatusSeeOther)
}

// reportRouter dispatches /html/report/{id}[/{page}] to the page handlers.
func reportRouter(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/html/report/")
	parts := strings.SplitN(rest, "/", 2)
	reportID := parts[0]
	if reportID == "" {
		http.NotFound(w, r)
		return
	}

	report, err := reportStore.GetReport(r.Context(), reportID)
	if err != nil {
		LoggerFromContext(r.Context()).Error("report load failed", "report_id", reportID, "error", err)
		http.Error(w, "could not load report", http.StatusInternalServerError)
		return
	}
	if report == nil {
		http.NotFound(w, r)
		return
	}

	page := ""
	if len(parts) == 2 {
		page = parts[1]
	}
	switch page {
	case "":
		reportPageHandler(w, r, report)
	case "metadata":
		metadataPageHandler(w, r, report)
	case "compliance":
		compliancePageHandler(w, r, report)
	case "export":
		exportPageHandler(w, r, report)
	default:
		http.NotFound(w, r)
	}
}

// newRenderContext builds the per-request render context: session, tracker,
// CSRF token and the reason-missing marker from the redirect query.
func newRenderContext(w http.ResponseWriter, r *http.Request, reportID string) (*renderContext, string) {
	sessionID := ensureSession(w, r)
	tracker := NewFeedbackTracker(r.Context(), reportStore.backend, cacheConfig.FeedbackTTL, sessionID)
	return &renderContext{
		reportID:        reportID,
		tracker:         tracker,
		csrfToken:       generateCSRFToken(sessionID),
		reasonMissingID: r.URL.Query().Get("reason_missing"),
	}, sessionID
}

func reportPageHandler(w http.ResponseWriter, r *http.Request, report *types.Report) {
	flash := getFlashMessages(w, r)
	ctx, _ := newRenderContext(w, r, report.ID)

	// CSRF tokens and widget states are baked into the body, so the page is
	// composed fresh per request; the render cache serves the block view via
	// GetOrRender only for variants without per-request state (export).
	body := renderReportHTML(report, ctx)
	ctx.tracker.SaveRegistry(r.Context())

	renderPage(w, "Report", "Writing analysis report", reportNav(report.ID), flash, body)
}

func metadataPageHandler(w http.ResponseWriter, r *http.Request, report *types.Report) {
	reportURL := "/html/report/" + report.ID
	ctx, sessionID := newRenderContext(w, r, report.ID)

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			redirectWithError(w, r, reportURL+"/metadata", "Could not read the form.")
			return
		}
		if !validateCSRFToken(sessionID, r.FormValue("csrf_token")) {
			redirectWithError(w, r, reportURL+"/metadata", "The form expired. Please try again.")
			return
		}
		report.Metadata = metadataFromForm(r)
		if err := reportStore.SaveReport(r.Context(), report); err != nil {
			LoggerFromContext(r.Context()).Error("metadata save failed", "report_id", report.ID, "error", err)
			redirectWithError(w, r, reportURL+"/metadata", "Saving metadata failed.")
			return
		}
		reportStore.InvalidateRender(r.Context(), report.ID, sessionID)
		redirectWithSuccess(w, r, reportURL+"/metadata", "Metadata saved.")
		return
	}

	flash := getFlashMessages(w, r)
	body := safeFragment("metadata", func() string {
		return renderMetadataForm(report, ctx.csrfToken)
	})
	renderPage(w, "Metadata", "Document metadata editor", reportNav(report.ID), flash, body)
}

func compliancePageHandler(w http.ResponseWriter, r *http.Request, report *types.Report) {
	flash := getFlashMessages(w, r)
	ctx, _ := newRenderContext(w, r, report.ID)
	body := safeFragment("compliance", func() string {
		return renderCompliancePanel(report.Compliance, ctx)
	})
	renderPage(w, "Compliance", "Modular compliance findings", reportNav(report.ID), flash, body)
}

func exportPageHandler(w http.ResponseWriter, r *http.Request, report *types.Report) {
	flash := getFlashMessages(w, r)
	sessionID := ensureSession(w, r)

	shareURL := shareBaseURL(r) + "/html/report/" + report.ID
	body, err := reportStore.GetOrRender(r.Context(), report.ID, sessionID, "export", func() (string, error) {
		return safeFragment("export", func() string {
			return renderExportPanel(report, shareURL)
		}), nil
	})
	if err != nil {
		LoggerFromContext(r.Context()).Error("export render failed", "report_id", report.ID, "error", err)
		http.Error(w, "could not render export", http.StatusInternalServerError)
		return
	}
	renderPage(w, "Export", "Export and share", reportNav(report.ID), flash, body)
}

// feedbackFormHandler is the widget form target. Verdicts: helpful,
// not_helpful (reason required) and change (clears the stored record).
func feedbackFormHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	log := LoggerFromContext(r.Context())

	reportID := r.FormValue("report_id")
	errorID := r.FormValue("error_id")
	verdict := r.FormValue("verdict")
	reportURL := "/html/report/" + reportID
	if reportID == "" || errorID == "" {
		http.Error(w, "report_id and error_id required", http.StatusBadRequest)
		return
	}

	sessionID := ensureSession(w, r)
	if !validateCSRFToken(sessionID, r.FormValue("csrf_token")) {
		redirectWithError(w, r, reportURL, "The form expired. Please reload and try again.")
		return
	}

	tracker := NewFeedbackTracker(r.Context(), reportStore.backend, cacheConfig.FeedbackTTL, sessionID)
	anchor := "#err-" + errorID

	switch verdict {
	case "change":
		tracker.Clear(r.Context(), errorID)
		log.Debug("feedback cleared", "error_id", errorID)
		http.Redirect(w, r, reportURL+anchor, http.StatusSeeOther)
		return

	case types.VerdictHelpful, types.VerdictNotHelpful:
		var reason *types.FeedbackReason
		if verdict == types.VerdictNotHelpful {
			category := r.FormValue("reason_category")
			if category == "" {
				// Surfaced failure: send the user back with the fieldset
				// flagged. No record is written.
				http.Redirect(w, r, reportURL+"?reason_missing="+errorID+anchor, http.StatusSeeOther)
				return
			}
			reason = &types.FeedbackReason{
				Category: category,
				Comment:  strings.TrimSpace(r.FormValue("reason_comment")),
			}
		}

		errRecord := tracker.LookupError(errorID)
		if errRecord == nil {
			log.Warn("feedback for unknown error id", "error_id", errorID)
			redirectWithError(w, r, reportURL, "That issue is no longer on this report.")
			return
		}
		id, record := tracker.Record(r.Context(), errRecord, verdict, reason)
		feedbackPublisher.Publish(BuildSubmission(sessionID, id, errRecord, record))
		http.Redirect(w, r, reportURL+anchor, http.StatusSeeOther)
		return

	default:
		http.Error(w, "unknown verdict", http.StatusBadRequest)
	}
}

// apiFeedbackHandler accepts the wire-shape submission directly. Used by
// non-HTML clients; the record is stored locally when the error is known to
// this session and always mirrored onward.
func apiFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var sub types.FeedbackSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if sub.ErrorID == "" || (sub.FeedbackType != "correct" && sub.FeedbackType != "incorrect") {
		http.Error(w, "error_id and feedback_type (correct|incorrect) required", http.StatusBadRequest)
		return
	}
	if sub.SessionID == "" {
		sub.SessionID = sessionIDFromRequest(r)
	}

	if sub.SessionID != "" {
		verdict := types.VerdictHelpful
		if sub.FeedbackType == "incorrect" {
			verdict = types.VerdictNotHelpful
		}
		tracker := NewFeedbackTracker(r.Context(), reportStore.backend, cacheConfig.FeedbackTTL, sub.SessionID)
		if errRecord := tracker.LookupError(sub.ErrorID); errRecord != nil {
			tracker.Record(r.Context(), errRecord, verdict, nil)
		}
	}
	feedbackPublisher.Publish(sub)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprint(w, `{"status":"accepted"}`)
}

func helpHandler(w http.ResponseWriter, r *http.Request) {
	flash := getFlashMessages(w, r)
	nav := []navLink{{Href: "/html/help", Label: "Help"}}
	renderPage(w, "Help", "Usage guide", nav, flash, renderHelpHTML())
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
