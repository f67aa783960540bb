package httpapi

import (
	"context"
	"log"
	"net/http"
)

type RunHandler struct {
	Runner RunTrigger
}

// Trigger starts a pipeline run in the background and returns immediately.
// The run lock makes double-triggering harmless.
func (h RunHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	go func() {
		if err := h.Runner.RunOnce(context.Background()); err != nil {
			log.Printf("[api] triggered run: %v", err)
		}
	}()
	WriteJSON(w, http.StatusAccepted, map[string]any{"started": true})
}

func (h RunHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Runner.Status())
}
