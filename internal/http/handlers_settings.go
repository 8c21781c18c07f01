package http

import (
	"net/http"

	applog "opsboard/internal/log"
)

// maxFormBytes bounds the settings form body.
const maxFormBytes = 64 << 10

type settingsPage struct {
	Backend          string
	RequiresEndpoint bool
	Endpoint         string
	Configured       bool
	Error            string
}

func (s *Server) settingsPage() settingsPage {
	return settingsPage{
		Backend:          s.opts.Backend,
		RequiresEndpoint: s.opts.RequiresEndpoint,
		Endpoint:         s.opts.Endpoint.URL,
		Configured:       s.opts.Endpoint.Configured(),
	}
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "settings.html", s.settingsPage())
}

// handleSaveSettings stores the submitted endpoint exactly as entered. The save restarts
// the application, so the redirect lands on the next generation.
func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		s.access.LogError(r.Context(), "Settings form rejected", err, applog.OpParse, nil)
		page := s.settingsPage()
		page.Error = "Invalid form submission."
		s.render(w, r, http.StatusBadRequest, "settings.html", page)
		return
	}

	url := r.PostForm.Get("api_url")
	if err := s.opts.Settings.Save(r.Context(), url); err != nil {
		s.access.LogError(r.Context(), "Endpoint save failed", err, applog.OpSave, applog.NewFields().
			WithComponent(applog.ComponentSettings))
		page := s.settingsPage()
		page.Endpoint = url
		page.Error = "Could not save the endpoint: " + err.Error()
		s.render(w, r, http.StatusInternalServerError, "settings.html", page)
		return
	}

	s.access.LogEndpointSaved(r.Context(), url, s.detector.ExtractClientIP(r))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
