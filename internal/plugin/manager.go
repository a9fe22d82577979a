package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ManifestFile is the manifest name looked up in each plugin directory.
const ManifestFile = "plugin.json"

var (
	// ErrPluginNotFound is returned when a requested plugin cannot be found.
	ErrPluginNotFound = errors.New("plugin not found")

	// ErrActionNotSupported is returned when a plugin's manifest does not
	// list the requested action.
	ErrActionNotSupported = errors.New("action not supported by plugin")
)

// Manager discovers plugins below a directory and looks them up by name.
type Manager struct {
	pluginDir string
	plugins   map[string]*Plugin
	mu        sync.RWMutex
}

// NewManager creates a new plugin Manager with the given plugin directory.
func NewManager(pluginDir string) *Manager {
	return &Manager{
		pluginDir: pluginDir,
		plugins:   make(map[string]*Plugin),
	}
}

// Discover rescans the plugin directory. Every subdirectory holding a
// readable plugin.json becomes a plugin; others are skipped. A missing
// directory yields no plugins.
func (m *Manager) Discover() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.plugins = make(map[string]*Plugin)

	info, err := os.Stat(m.pluginDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}

	entries, err := os.ReadDir(m.pluginDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pluginPath := filepath.Join(m.pluginDir, entry.Name())
		p, err := loadPlugin(pluginPath)
		if err != nil {
			if !os.IsNotExist(err) {
				log.Printf("Skipping plugin %s: %v", entry.Name(), err)
			}
			continue
		}

		m.plugins[p.Manifest.Name] = p
	}

	return nil
}

func loadPlugin(dir string) (*Plugin, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	if manifest.Name == "" {
		manifest.Name = filepath.Base(dir)
	}
	if manifest.Executable == "" {
		manifest.Executable = manifest.Name
	}

	return &Plugin{
		Manifest:   manifest,
		Path:       dir,
		Executable: filepath.Join(dir, manifest.Executable),
	}, nil
}

// Register adds a plugin without scanning, replacing any plugin of the
// same name.
func (m *Manager) Register(p *Plugin) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plugins[p.Manifest.Name] = p
}

// Get returns a plugin by name.
// Returns ErrPluginNotFound if the plugin does not exist.
func (m *Manager) Get(name string) (*Plugin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plugin, ok := m.plugins[name]
	if !ok {
		return nil, ErrPluginNotFound
	}

	return plugin, nil
}

// Resolve returns the named plugin if it supports action.
func (m *Manager) Resolve(name, action string) (*Plugin, error) {
	p, err := m.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if !p.Supports(action) {
		return nil, fmt.Errorf("%s/%s: %w", name, action, ErrActionNotSupported)
	}
	return p, nil
}

// List returns all discovered plugins sorted by name.
func (m *Manager) List() []*Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plugins := make([]*Plugin, 0, len(m.plugins))
	for _, plugin := range m.plugins {
		plugins = append(plugins, plugin)
	}
	sort.Slice(plugins, func(i, j int) bool {
		return plugins[i].Manifest.Name < plugins[j].Manifest.Name
	})

	return plugins
}

// PluginDir returns the plugin directory path.
func (m *Manager) PluginDir() string {
	return m.pluginDir
}
