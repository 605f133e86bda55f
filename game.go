package main

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"lightbox/internal/geometry"
	"lightbox/internal/gesture"
	"lightbox/internal/lightbox"
	"lightbox/internal/media"
	"lightbox/internal/remote"
)

// eventQueueSize bounds the completions and remote commands waiting for
// the next frame
const eventQueueSize = 256

// Game represents the main application state
type Game struct {
	config       Config
	configStatus ConfigLoadResult
	configPath   string

	ctrl    *lightbox.Controller
	anchors []lightbox.Anchor
	group   lightbox.Group
	history *lightbox.MemoryHistory
	opened  bool
	warmed  int // slide the warm-up list was built for

	fetcher  *media.Fetcher
	loader   *imageLoader
	filterer *colorFilterer
	nodes    *nodeStore

	// Work from other goroutines runs on the UI loop through events
	events   chan func()
	done     chan struct{}
	stopOnce sync.Once

	renderer *Renderer
	input    *InputHandler
	remote   *remote.Server

	statusMu sync.Mutex
	status   remote.Status

	showHelp      bool
	showInfo      bool
	overlayMsg    string
	overlayTime   time.Time
	exitRequested bool

	width  int
	height int

	// windowed size at exit, for the config
	savedW int
	savedH int
}

// NewGame wires the gallery controller to its collaborators
func NewGame(result ConfigLoadResult, configPath string, fetcher *media.Fetcher) *Game {
	cfg := result.Config
	g := &Game{
		config:       cfg,
		configStatus: result,
		configPath:   configPath,
		history:      lightbox.NewMemoryHistory(),
		fetcher:      fetcher,
		events:       make(chan func(), eventQueueSize),
		done:         make(chan struct{}),
		width:        cfg.WindowWidth,
		height:       cfg.WindowHeight,
	}

	g.loader = newImageLoader(fetcherDecoder(fetcher), g.post, cfg.CacheSize, cfg.LoadWorkers)
	g.filterer = newColorFilterer(g.loader, g.post)
	g.nodes = newNodeStore(fetcher)

	downloadDir := cfg.DownloadDir
	if downloadDir == "" {
		downloadDir = defaultDownloadDir()
	}

	g.ctrl = lightbox.New(lightbox.Host{
		Loader:      g.loader,
		Filterer:    g.filterer,
		Nodes:       g.nodes,
		History:     g.history,
		Fullscreen:  lightbox.ProbeFullscreen(fullscreenProbes()),
		Downloader:  &fileDownloader{dir: downloadDir, fetcher: fetcher},
		URLOpener:   browserOpener{},
		Environment: g.environment(),
		Logger:      log.Default(),
		Debug:       debugMode,
	})

	g.renderer = NewRenderer(g)
	g.input = NewInputHandler(g,
		g,
		NewKeybindingManager(cfg.Keybindings),
		NewMousebindingManager(cfg.Mousebindings, cfg.Mouse),
	)
	return g
}

// environment returns the source selection hints. A zero pixel ratio in
// the config means the monitor's scale factor.
func (g *Game) environment() lightbox.Environment {
	dpr := g.config.DevicePixelRatio
	if dpr <= 0 {
		if m := ebiten.Monitor(); m != nil {
			dpr = m.DeviceScaleFactor()
		}
	}
	return lightbox.Environment{DevicePixelRatio: dpr, Downlink: g.config.Downlink}
}

// post queues fn for the UI loop. It gives up once the game is stopped
// so workers never block on a loop that no longer drains.
func (g *Game) post(fn func()) {
	select {
	case g.events <- fn:
	case <-g.done:
	}
}

func (g *Game) drainEvents() {
	for {
		select {
		case fn := <-g.events:
			fn()
		default:
			return
		}
	}
}

// Open shows the gallery at index (1-based)
func (g *Game) Open(anchors []lightbox.Anchor, group lightbox.Group, index int) {
	g.anchors = anchors
	g.group = group
	g.ctrl.Resize(geometry.Size{W: float64(g.width), H: float64(g.height)})
	g.ctrl.Show(anchors, &g.group, index)
	g.opened = g.ctrl.IsOpen()
	g.publishStatus()
}

// Stop releases the workers. It is safe to call more than once.
func (g *Game) Stop() {
	g.stopOnce.Do(func() {
		close(g.done)
		g.loader.Stop()
		g.filterer.Stop()
		g.ctrl.Destroy()
	})
}

// Update is called every tick (1/60 [s] by default)
func (g *Game) Update() error {
	g.drainEvents()
	g.input.HandleInput()

	now := time.Now()
	g.ctrl.Update(now)

	if g.config.PreloadEnabled && g.ctrl.IsOpen() {
		if slide := g.ctrl.State().CurrentSlide; slide != g.warmed {
			g.warmed = slide
			g.loader.Warm(g.upcomingSources())
		}
	}
	g.publishStatus()

	// a closed gallery exits once the dismiss transition has finished
	if g.exitRequested || (g.opened && !g.ctrl.Scene().Attached) {
		g.recordWindowSize()
		return ebiten.Termination
	}
	return nil
}

func (g *Game) recordWindowSize() {
	if ebiten.IsFullscreen() {
		return
	}
	g.savedW, g.savedH = ebiten.WindowSize()
}

// WindowSize returns the windowed size seen at exit, or zeros
func (g *Game) WindowSize() (int, int) {
	return g.savedW, g.savedH
}

// upcomingSources returns the sources of the image slides after the
// current one, PreloadCount deep. The slide right after the current one
// is preloaded by the controller itself.
func (g *Game) upcomingSources() []string {
	count := len(g.anchors)
	if count < 3 {
		return nil
	}
	state := g.ctrl.State()
	size := lightbox.SourceSize(g.ctrl.Viewport(), g.environment())

	var srcs []string
	for i := 2; i <= g.config.PreloadCount+1 && i < count; i++ {
		n := state.CurrentSlide + i
		if n > count {
			if !state.Infinite {
				break
			}
			n -= count
		}
		anchor := g.anchors[n-1]
		opts := lightbox.Merge(g.group.Options, anchor.Data)
		if lightbox.ParseKind(opts["media"]) != lightbox.KindImage {
			continue
		}
		srcs = append(srcs, lightbox.SelectSource(anchor, opts, size))
	}
	return srcs
}

// Draw draws the game screen
func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen)
}

// Layout takes the outside size (e.g., the window size) and returns the (logical) screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.ctrl.Resize(geometry.Size{W: float64(outsideWidth), H: float64(outsideHeight)})
	}
	return outsideWidth, outsideHeight
}

// publishStatus refreshes the remote snapshot and pushes it on change
func (g *Game) publishStatus() {
	st := g.snapshot()
	g.statusMu.Lock()
	changed := st != g.status
	g.status = st
	g.statusMu.Unlock()

	if changed && g.remote != nil {
		g.remote.Broadcast(st)
	}
}

func (g *Game) snapshot() remote.Status {
	if !g.ctrl.IsOpen() {
		return remote.Status{Count: g.ctrl.Count()}
	}
	state := g.ctrl.State()
	slide := g.ctrl.Slide()
	return remote.Status{
		Open:    true,
		Slide:   state.CurrentSlide,
		Count:   g.ctrl.Count(),
		Scale:   state.Scale,
		Playing: state.Playing,
		Theme:   g.ctrl.Scene().Theme,
		Src:     slide.Src,
		Title:   slide.Title,
	}
}

// Status implements remote.Target
func (g *Game) Status() remote.Status {
	g.statusMu.Lock()
	defer g.statusMu.Unlock()
	return g.status
}

// Dispatch implements remote.Target
func (g *Game) Dispatch(cmd remote.Command) {
	g.post(func() { g.apply(cmd) })
}

// apply runs a remote command on the UI loop
func (g *Game) apply(cmd remote.Command) {
	debugLog("Remote command: %+v", cmd)
	var err error
	switch cmd.Action {
	case "next":
		g.ctrl.Next()
	case "prev":
		g.ctrl.Prev()
	case "goto":
		g.ctrl.Goto(cmd.Index)
	case "play":
		g.ctrl.SetPlaying(true)
	case "pause":
		g.ctrl.SetPlaying(false)
	case "toggle-play":
		g.ctrl.Play()
	case "close":
		g.ctrl.Close()
	case "zoom-in":
		g.ctrl.ZoomIn()
	case "zoom-out":
		g.ctrl.ZoomOut()
	case "zoom":
		g.ctrl.Zoom(cmd.Factor)
	case "autofit":
		g.ctrl.Autofit()
	case "theme":
		if cmd.Name != "" {
			g.ctrl.Theme(cmd.Name)
		} else {
			g.ctrl.ToggleTheme()
		}
	case "fullscreen":
		err = g.ctrl.Fullscreen()
	case "menu":
		g.ctrl.Menu()
	case "download":
		err = g.ctrl.Download()
	case "control":
		if !g.ctrl.ClickControl(cmd.Name) {
			err = fmt.Errorf("no control named %q", cmd.Name)
		}
	}
	if err != nil {
		log.Printf("Warning: Remote %s failed: %v", cmd.Action, err)
	}
}

// RenderState implementation

func (g *Game) GetScene() *lightbox.Scene {
	return g.ctrl.Scene()
}

func (g *Game) GetSlide() lightbox.Slide {
	return g.ctrl.Slide()
}

func (g *Game) IsShowingHelp() bool {
	return g.showHelp
}

func (g *Game) IsShowingInfo() bool {
	return g.showInfo
}

func (g *Game) GetOverlayMessage() string {
	return g.overlayMsg
}

func (g *Game) GetOverlayMessageTime() time.Time {
	return g.overlayTime
}

func (g *Game) GetInfoText() string {
	info := formatInfo(g.ctrl.Scene(), g.ctrl.State(), g.ctrl.Slide(), g.loader.Stats())
	return info + "\nsort: " + getSortMethodName(g.config.SortMethod)
}

func (g *Game) GetFontSize() float64 {
	return g.config.HelpFontSize
}

func (g *Game) GetConfigStatus() ConfigLoadResult {
	return g.configStatus
}

func (g *Game) GetKeybindings() map[string][]string {
	return g.config.Keybindings
}

func (g *Game) GetMousebindings() map[string][]string {
	return g.config.Mousebindings
}

// InputActions implementation

func (g *Game) Exit() {
	g.exitRequested = true
}

func (g *Game) ToggleHelp() {
	g.showHelp = !g.showHelp
}

func (g *Game) ToggleInfo() {
	g.showInfo = !g.showInfo
}

func (g *Game) HandleKey(k lightbox.Key) bool {
	return g.ctrl.HandleKey(k)
}

func (g *Game) JumpTo(slide int) {
	g.ctrl.Goto(slide)
}

// Back performs a history back step, which closes the gallery when it
// lands on one of its entries
func (g *Game) Back() {
	state, ok := g.history.Back()
	if !ok {
		return
	}
	g.ctrl.HandlePopState(state)
}

func (g *Game) GetTotalSlidesCount() int {
	return g.ctrl.Count()
}

func (g *Game) ToggleFullscreen() {
	if err := g.ctrl.Fullscreen(); err != nil {
		g.ShowOverlayMessage("Fullscreen unavailable")
		debugLog("Fullscreen failed: %v", err)
	}
}

func (g *Game) ToggleTheme() {
	g.ctrl.ToggleTheme()
}

func (g *Game) ToggleMenu() {
	g.ctrl.Menu()
}

func (g *Game) Download() {
	if err := g.ctrl.Download(); err != nil {
		log.Printf("Warning: %v", err)
		g.ShowOverlayMessage("Download failed")
		return
	}
	g.ShowOverlayMessage("Downloaded " + g.ctrl.Slide().Title)
}

func (g *Game) Filter(color lightbox.FilterColor) {
	if err := g.ctrl.FilterColor(color); err != nil {
		g.showError("Filter", err)
	}
}

func (g *Game) RestoreOriginal() {
	if err := g.ctrl.RestoreOriginal(); err != nil {
		g.showError("Restore", err)
	}
}

func (g *Game) showError(what string, err error) {
	if errors.Is(err, lightbox.ErrUnsupportedCapability) {
		g.ShowOverlayMessage(what + " is not available")
		return
	}
	g.ShowOverlayMessage(fmt.Sprintf("%s: %v", what, err))
}

func (g *Game) ShowOverlayMessage(message string) {
	g.overlayMsg = message
	g.overlayTime = time.Now()
}

// PointerTarget implementation

func (g *Game) GetViewport() (float64, float64) {
	return float64(g.width), float64(g.height)
}

func (g *Game) PointerDown(p gesture.Point) {
	g.ctrl.PointerDown(p)
}

func (g *Game) PointerMove(p gesture.Point) {
	g.ctrl.PointerMove(p)
}

func (g *Game) PointerUp() {
	g.ctrl.PointerUp()
}

func (g *Game) PointerLeave() {
	g.ctrl.PointerLeave()
}

func (g *Game) TouchStart(points []gesture.Point) {
	g.ctrl.TouchStart(points)
}

func (g *Game) TouchMove(points []gesture.Point) {
	g.ctrl.TouchMove(points)
}

func (g *Game) TouchEnd() {
	g.ctrl.TouchEnd()
}

func (g *Game) Wheel(deltaY float64) {
	g.ctrl.Wheel(deltaY)
}

func (g *Game) ClickControl(name string) {
	g.ctrl.ClickControl(name)
}

func (g *Game) ClickButton() {
	g.ctrl.ClickButton()
}

func (g *Game) ClickArrow(forward bool) {
	if forward {
		g.ctrl.Next()
	} else {
		g.ctrl.Prev()
	}
}
