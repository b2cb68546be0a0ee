package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/wavecam/internal/store"
)

// Controller is the part of the running application the settings endpoint drives.
type Controller interface {
	Settings() store.Settings
	UpdateSettings(s store.Settings) error
	IsEnabled() bool
	SetEnabled(enabled bool)
}

// SettingsHandler serves GET and PUT /api/settings.
type SettingsHandler struct {
	ctrl Controller
}

// NewSettingsHandler creates a SettingsHandler for ctrl.
func NewSettingsHandler(ctrl Controller) *SettingsHandler {
	return &SettingsHandler{ctrl: ctrl}
}

type settingsResponse struct {
	store.Settings
	Enabled bool `json:"enabled"`
}

// updateSettingsRequest uses pointers so omitted fields keep their values.
type updateSettingsRequest struct {
	Sensitivity     *int  `json:"sensitivity"`
	SkinFilter      *bool `json:"skin_filter"`
	FrameRate       *int  `json:"frame_rate"`
	CompressionRate *int  `json:"compression_rate"`
	Enabled         *bool `json:"enabled"`
}

// ServeHTTP implements the http.Handler interface.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) current() settingsResponse {
	return settingsResponse{Settings: h.ctrl.Settings(), Enabled: h.ctrl.IsEnabled()}
}

func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.current())
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	s := h.ctrl.Settings()
	if req.Sensitivity != nil {
		s.Sensitivity = *req.Sensitivity
	}
	if req.SkinFilter != nil {
		s.SkinFilter = *req.SkinFilter
	}
	if req.FrameRate != nil {
		s.FrameRate = *req.FrameRate
	}
	if req.CompressionRate != nil {
		s.CompressionRate = *req.CompressionRate
	}

	if err := s.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.ctrl.UpdateSettings(s); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}
	if req.Enabled != nil {
		h.ctrl.SetEnabled(*req.Enabled)
	}

	writeJSON(w, http.StatusOK, h.current())
}
