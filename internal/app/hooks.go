package app

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/ayusman/airtype/internal/config"
	"github.com/ayusman/airtype/internal/gesture"
	"github.com/ayusman/airtype/internal/plugin"
	"github.com/ayusman/airtype/internal/store"
)

// binding is one plugin action to run for a command.
type binding struct {
	plugin string
	action string
	config json.RawMessage
}

// hookRunner runs the plugin actions bound to gesture commands. Bindings
// come from the configuration file and from the hooks table.
type hookRunner struct {
	store   *store.Store
	plugins *plugin.Manager
	exec    *plugin.Executor

	mu         sync.RWMutex
	configured []config.HookConfig

	wg sync.WaitGroup
}

func newHookRunner(s *store.Store, plugins *plugin.Manager, exec *plugin.Executor, configured []config.HookConfig) *hookRunner {
	return &hookRunner{
		store:      s,
		plugins:    plugins,
		exec:       exec,
		configured: configured,
	}
}

// SetConfigured replaces the bindings read from the configuration file.
func (r *hookRunner) SetConfigured(hooks []config.HookConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configured = hooks
}

func (r *hookRunner) bindings(cmd gesture.Command) []binding {
	var out []binding

	r.mu.RLock()
	for _, h := range r.configured {
		if h.Command == string(cmd) {
			out = append(out, binding{plugin: h.Plugin, action: h.Action})
		}
	}
	r.mu.RUnlock()

	if r.store == nil {
		return out
	}
	stored, err := r.store.Hooks().ListByCommand(string(cmd))
	if err != nil {
		log.Printf("Failed to load hooks for %s: %v", cmd, err)
		return out
	}
	for _, h := range stored {
		out = append(out, binding{plugin: h.PluginName, action: h.ActionName, config: h.Config})
	}
	return out
}

// Fire starts every hook bound to cmd in the background and returns how
// many were started. text is the typed text the hooks operate on.
func (r *hookRunner) Fire(ctx context.Context, cmd gesture.Command, text string) int {
	started := 0
	for _, b := range r.bindings(cmd) {
		p, err := r.plugins.Resolve(b.plugin, b.action)
		if err != nil {
			log.Printf("Skipping hook for %s: %v", cmd, err)
			continue
		}

		req := &plugin.Request{
			Action:  b.action,
			Command: string(cmd),
			Text:    text,
			Config:  b.config,
		}

		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.run(ctx, p, req)
		}()
		started++
	}
	return started
}

func (r *hookRunner) run(ctx context.Context, p *plugin.Plugin, req *plugin.Request) {
	resp, err := r.exec.Execute(ctx, p, req)
	if err != nil {
		log.Printf("Hook %s/%s for %s failed: %v", p.Manifest.Name, req.Action, req.Command, err)
		return
	}
	if !resp.Success {
		log.Printf("Hook %s/%s for %s reported: %s", p.Manifest.Name, req.Action, req.Command, resp.Error)
		return
	}
	log.Printf("Hook %s/%s ran for %s", p.Manifest.Name, req.Action, req.Command)
}

// Wait blocks until every started hook has finished.
func (r *hookRunner) Wait() {
	r.wg.Wait()
}
