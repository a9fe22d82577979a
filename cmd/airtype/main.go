package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/ayusman/airtype/internal/app"
	"github.com/ayusman/airtype/internal/config"
	"github.com/ayusman/airtype/internal/engine"
	"github.com/ayusman/airtype/internal/server"
	"github.com/ayusman/airtype/internal/store"
	"github.com/ayusman/airtype/internal/tray"
)

func main() {
	configPath := flag.String("config", config.ConfigPath(), "path to the configuration file")
	addr := flag.String("addr", "", "HTTP listen address (overrides server.addr)")
	device := flag.Int("camera", -1, "camera device ID (overrides camera.device_id)")
	staticDir := flag.String("static", "", "renderer directory to serve (overrides server.static_dir)")
	noTray := flag.Bool("no-tray", false, "run without the system tray")
	flag.Parse()

	fmt.Println("airtype - Air Typing Keyboard")

	loader, created, err := config.LoadOrCreate(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	defer loader.Close()
	if created {
		log.Printf("Wrote default configuration to %s", loader.Path())
	}

	cfg := loader.Config()
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *device >= 0 {
		cfg.Camera.DeviceID = *device
	}
	if *staticDir != "" {
		cfg.Server.StaticDir = *staticDir
	}

	if err := os.MkdirAll(config.ExpandPath(cfg.Storage.Dir), 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	application, err := app.New(app.Config{Settings: cfg, Store: st})
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}
	defer application.Close()

	if err := application.DiscoverPlugins(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}
	if err := application.Restore(); err != nil {
		log.Printf("Failed to restore previous session: %v", err)
	}

	hub := server.NewStateHub()
	application.Subscribe(func(out engine.Output) {
		if err := hub.Publish(out); err != nil {
			log.Printf("Failed to publish state: %v", err)
		}
	})

	webDir := cfg.Server.StaticDir
	if webDir == "" {
		webDir = findWebDir()
	} else {
		webDir = config.ExpandPath(webDir)
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir:  webDir,
		Store:      st,
		Frames:     application,
		Controller: application,
		Plugins:    application.PluginManager(),
		Hub:        hub,
	})

	loader.OnChange(application.ApplyConfig)
	if err := loader.Watch(); err != nil {
		log.Printf("Config hot reload disabled: %v", err)
	}
	go func() {
		for err := range loader.Errors() {
			log.Printf("Config reload failed: %v", err)
		}
	}()

	if err := application.Start(); err != nil {
		log.Fatalf("Failed to start typing pipeline: %v", err)
	}
	defer application.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Server.Addr)
		serverErr <- srv.Run(ctx, cfg.Server.Addr)
	}()

	if *noTray {
		select {
		case <-ctx.Done():
			if err := <-serverErr; err != nil {
				log.Printf("Server shutdown failed: %v", err)
			}
		case err := <-serverErr:
			if err != nil {
				log.Printf("Server failed: %v", err)
			}
		}
		return
	}

	t := tray.New(application.Layout())
	t.SetPaused(application.Paused())
	t.OnToggle(application.SetPaused)
	t.OnLayout(application.NextLayout)
	t.OnSettings(func() { openBrowser(browserURL(cfg.Server.Addr)) })
	t.OnQuit(stop)

	var lastCommand string
	application.Subscribe(func(out engine.Output) {
		if out.Command == nil {
			return
		}
		if name := string(out.Command.Command); name != lastCommand {
			lastCommand = name
			t.SetLastCommand(name)
		}
		t.SetPaused(out.Paused)
	})

	go func() {
		select {
		case <-ctx.Done():
		case err := <-serverErr:
			if err != nil {
				log.Printf("Server failed: %v", err)
			}
		}
		t.Quit()
	}()

	// The tray needs the main goroutine on macOS.
	t.Run()
}

// findWebDir searches for the renderer directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.airtype/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".airtype", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

func browserURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
