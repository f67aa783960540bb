package source

import (
	"outreach-engine/internal/config"
	"outreach-engine/internal/source/board"
	"outreach-engine/internal/source/hackernews"
	"outreach-engine/internal/source/util"
)

// Factory builds one connector from the loaded config. Connectors register
// here by id instead of the pipeline branching on type.
type Factory func(cfg config.Config, limiter *util.HostLimiter) Connector

var registry = map[string]Factory{
	"board": func(cfg config.Config, limiter *util.HostLimiter) Connector {
		var pages []board.Page
		for _, p := range cfg.Sources.Boards.Pages {
			pages = append(pages, board.Page{Name: p.Name, URL: p.URL})
		}
		return board.New(board.Config{Pages: pages, Keywords: cfg.Sources.Keywords}, limiter)
	},
	"hn": func(cfg config.Config, limiter *util.HostLimiter) Connector {
		return hackernews.New(hackernews.Config{Keywords: cfg.Sources.Keywords}, limiter)
	},
}

// Enabled returns the connectors the config turns on, in registration order.
func Enabled(cfg config.Config, limiter *util.HostLimiter) []Connector {
	var out []Connector
	if cfg.Sources.Boards.Enabled {
		out = append(out, registry["board"](cfg, limiter))
	}
	if cfg.Sources.HackerNews.Enabled {
		out = append(out, registry["hn"](cfg, limiter))
	}
	return out
}
