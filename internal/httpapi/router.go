package httpapi

import "net/http"

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv).
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	hh := HealthHandler{DB: d.DB}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	// Leads
	lh := LeadsHandler{DB: d.DB}
	mux.HandleFunc("/leads", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: lh.List,
	}))
	mux.HandleFunc("/outreach", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: lh.Outreach,
	}))

	// Opt-outs; GET /optout is the public unsubscribe link target.
	oh := OptOutHandler{DB: d.DB, Hub: d.Hub, UnsubSecret: d.UnsubSecret}
	mux.HandleFunc("/optouts", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  oh.List,
		http.MethodPost: oh.Add,
	}))
	mux.HandleFunc("/optout", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: oh.Unsubscribe,
	}))

	// Pipeline
	rh := RunHandler{Runner: d.Runner}
	mux.HandleFunc("/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: rh.Trigger,
	}))
	mux.HandleFunc("/run/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.Status,
	}))

	// Latest analytics snapshot + outreach totals
	rph := ReportHandler{DB: d.DB, CfgVal: d.CfgVal}
	mux.HandleFunc("/report", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rph.Latest,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (keychain-backed; never echoed back)
	sh := SecretsHandler{}
	mux.HandleFunc("/api/secrets/", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetByPath,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	return mux
}
