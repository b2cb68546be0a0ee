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
	"syscall"

	"github.com/ayusman/wavecam/internal/app"
	"github.com/ayusman/wavecam/internal/publish"
	"github.com/ayusman/wavecam/internal/server"
	"github.com/ayusman/wavecam/internal/store"
	"github.com/ayusman/wavecam/internal/tray"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	dataDir := flag.String("data", "", "data directory (default ~/.wavecam)")
	cameraID := flag.Int("camera", 0, "camera device index")
	pluginDir := flag.String("plugins", "", "plugin directory (default <data>/plugins)")
	debug := flag.Bool("debug", false, "stream the motion visualization instead of the camera image")
	useTray := flag.Bool("tray", runtime.GOOS == "darwin", "show the menu bar item")
	zmqEndpoint := flag.String("zmq", "", "publish gestures on a ZeroMQ PUB socket, e.g. tcp://*:5556")
	flag.Parse()

	fmt.Println("Wavecam - Motion Gesture Control")

	if *dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		*dataDir = filepath.Join(homeDir, ".wavecam")
	}
	if err := os.MkdirAll(*dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	if *pluginDir == "" {
		*pluginDir = filepath.Join(*dataDir, "plugins")
	}

	st, err := store.New(filepath.Join(*dataDir, "wavecam.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	a := app.New(app.Config{
		Store:     st,
		PluginDir: *pluginDir,
		CameraID:  *cameraID,
		Debug:     *debug,
	})
	if err := a.LoadSettings(); err != nil {
		log.Printf("Using default settings: %v", err)
	}
	if err := a.DiscoverPlugins(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}

	hub := server.NewEventHub()
	a.AddSink(hub)

	if *zmqEndpoint != "" {
		pub, err := publish.NewPublisher(*zmqEndpoint)
		if err != nil {
			log.Fatalf("Failed to open ZeroMQ publisher: %v", err)
		}
		defer pub.Close()
		a.AddSink(pub)
		log.Printf("Publishing gestures on %s", pub.Endpoint())
	}

	if err := a.Start(); err != nil {
		log.Printf("Gesture pipeline not started: %v", err)
	}
	defer a.Close()

	webDir := findWebDir(*dataDir)
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir:  webDir,
		Store:      st,
		Controller: a,
		Plugins:    a.PluginManager(),
		Frames:     a,
		Events:     hub,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Starting server on %s\n", *addr)
		errCh <- srv.Run(ctx, *addr)
		stop()
	}()

	if *useTray {
		runTray(ctx, a, stop, settingsURL(*addr))
	}

	if err := <-errCh; err != nil {
		log.Printf("Server failed: %v", err)
	}
}

// runTray blocks on the menu bar loop until the user quits or ctx ends.
func runTray(ctx context.Context, a *app.App, stop context.CancelFunc, url string) {
	t := tray.New()
	t.SetEnabled(a.IsEnabled())
	t.SetSkinFilter(a.Settings().SkinFilter)
	a.AddSink(t)

	t.OnToggle(a.SetEnabled)
	t.OnSkinFilter(func(enabled bool) {
		if err := a.SetSkinFilter(enabled); err != nil {
			log.Printf("Failed to save skin filter setting: %v", err)
		}
	})
	t.OnSettings(func() {
		if err := exec.Command("open", url).Start(); err != nil {
			log.Printf("Failed to open %s: %v", url, err)
		}
	})
	t.OnQuit(stop)

	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
}

func settingsURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <data>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
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

	dataWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}
