// Command hsmedit is a TUI editor for hierarchical state diagrams.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"

	"github.com/ha1tch/hsm-toolkit/pkg/diagram"
	"github.com/ha1tch/hsm-toolkit/pkg/geom"
	"github.com/ha1tch/hsm-toolkit/pkg/interact"
	"github.com/ha1tch/hsm-toolkit/pkg/kind"
	"github.com/ha1tch/hsm-toolkit/pkg/logging"
	"github.com/ha1tch/hsm-toolkit/pkg/render"
	"github.com/ha1tch/hsm-toolkit/pkg/route"
	"github.com/ha1tch/hsm-toolkit/pkg/scene"
	"github.com/ha1tch/hsm-toolkit/pkg/tree"
)

// Mode represents editor mode
type Mode int

const (
	ModeCanvas Mode = iota
	ModeInput
	ModeHelp
)

// MessageType for status messages
type MessageType int

const (
	MsgInfo    MessageType = iota // Informative, no flash
	MsgError                      // Errors, flash
	MsgSuccess                    // State changes, flash
)

// Rows reserved below the canvas for the help and status bars.
const barRows = 2

// Editor holds all editor state
type Editor struct {
	screen tcell.Screen
	config Config
	log    *slog.Logger

	ws       *diagram.Workspace
	files    map[uuid.UUID]string
	modified map[uuid.UUID]bool

	// Pointer state
	tracker   interact.Tracker
	pointer   geom.Point
	primary   bool
	secondary bool

	// Viewport: the diagram point shown at the top-left canvas cell
	offset geom.Point

	mode        Mode
	inputPrompt string
	inputBuffer string
	inputAction func(string)

	message           string
	messageType       MessageType
	messageFlashStart int64 // Unix milliseconds when message was shown
}

func newEditor(screen tcell.Screen, cfg Config, log *slog.Logger) *Editor {
	ed := &Editor{
		screen:   screen,
		config:   cfg,
		log:      log,
		ws:       diagram.NewWorkspace(),
		files:    make(map[uuid.UUID]string),
		modified: make(map[uuid.UUID]bool),
		offset:   geom.Pt(-2, -1),
	}
	ed.tracker.DeadZone = ed.diagramConfig().Interact.DeadZone
	return ed
}

func main() {
	cfg := LoadConfig()

	log := logging.Discard()
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file %s: %v\n", cfg.LogFile, err)
			os.Exit(1)
		}
		defer f.Close()
		level, _ := parseLevel(cfg.LogLevel)
		log = logging.New(f, level)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating screen: %v\n", err)
		os.Exit(1)
	}
	ed := newEditor(screen, cfg, log)

	// Load files before taking over the terminal so errors are readable
	for _, path := range os.Args[1:] {
		if err := ed.loadFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", path, err)
			os.Exit(1)
		}
	}
	if ed.ws.Len() == 0 {
		ed.newDiagram()
	}

	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing screen: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse()
	screen.Clear()

	ed.run()

	screen.Fini()
}

func (ed *Editor) run() {
	// Periodic refresh while a message is flashing
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			if ed.message != "" && ed.messageFlashStart > 0 {
				elapsed := nowMillis() - ed.messageFlashStart
				if elapsed >= 0 && elapsed < flashPeriod+200 {
					ed.screen.PostEvent(tcell.NewEventInterrupt(nil))
				}
			}
		}
	}()

	ed.step()
	for {
		ed.draw()
		ed.screen.Show()

		ev := ed.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			ed.screen.Sync()
		case *tcell.EventKey:
			if ed.handleKey(ev) {
				return
			}
		case *tcell.EventMouse:
			ed.handleMouse(ev)
		case *tcell.EventInterrupt:
			// Refresh only
		}
	}
}

// diagramConfig returns the settings every diagram in the editor uses.
func (ed *Editor) diagramConfig() diagram.Config {
	cfg := diagram.TerminalConfig()
	if ed.config.Edges == "direct" {
		cfg.Route.Style = route.StyleDirect
	}
	return cfg
}

func (ed *Editor) diagramOptions() []diagram.Option {
	return []diagram.Option{
		diagram.WithConfig(ed.diagramConfig()),
		diagram.WithMeasurer(geom.FixedMeasurer{CharWidth: 1, LineHeight: 1}),
		diagram.WithLogger(ed.log),
	}
}

func (ed *Editor) active() *diagram.Diagram { return ed.ws.Active() }

// step runs one frame of the active diagram with the current pointer
// state plus keys.
func (ed *Editor) step(keys ...interact.Key) *diagram.Frame {
	return ed.stepWith(ed.tracker.Next(ed.pointer, ed.primary, false, keys...))
}

func (ed *Editor) stepWith(in interact.Snapshot) *diagram.Frame {
	d := ed.active()
	if d == nil {
		return nil
	}
	before := d.Controller().Gesture()
	f := ed.ws.Frame(in)
	if f == nil {
		return nil
	}

	switch {
	case f.Outcome.Drop != nil:
		ed.markModified()
		if f.Outcome.Drop.Zone == tree.None {
			ed.showMessage("Detached to canvas", MsgSuccess)
		} else {
			ed.showMessage("Moved into "+ed.nodeName(f.Outcome.Drop.Zone), MsgSuccess)
		}
	case f.Outcome.Connect != nil:
		ed.markModified()
		ed.showMessage(fmt.Sprintf("Transition %s -> %s", ed.nodeName(f.Outcome.Connect.Source), ed.nodeName(f.Outcome.Connect.Target)), MsgSuccess)
	case f.Outcome.Cancelled != interact.GestureNone:
		ed.showMessage("Cancelled", MsgInfo)
	case before != interact.GestureNone && d.Controller().Gesture() == interact.GestureNone && in.Released:
		ed.markModified()
	}
	return f
}

func (ed *Editor) nodeName(id tree.NodeID) string {
	if n, ok := ed.active().Tree().Node(id); ok {
		return n.Name
	}
	return "?"
}

func (ed *Editor) markModified() {
	if d := ed.active(); d != nil {
		ed.modified[d.ID] = true
	}
}

// screenToDiagram maps a cell to the diagram point at its centre.
func (ed *Editor) screenToDiagram(x, y int) geom.Point {
	return geom.Pt(ed.offset.X+float64(x)+0.5, ed.offset.Y+float64(y)+0.5)
}

func (ed *Editor) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	buttons := ev.Buttons()

	switch {
	case buttons&tcell.WheelUp != 0:
		ed.pan(0, -3)
		return
	case buttons&tcell.WheelDown != 0:
		ed.pan(0, 3)
		return
	}
	if ed.mode != ModeCanvas {
		return
	}

	primary := buttons&tcell.Button1 != 0
	secondary := buttons&tcell.Button2 != 0
	_, h := ed.screen.Size()
	if y >= h-barRows && primary && !ed.primary {
		// Presses on the bars do not reach the canvas
		return
	}

	ed.pointer = ed.screenToDiagram(x, y)
	secondaryPressed := secondary && !ed.secondary
	ed.primary = primary
	ed.secondary = secondary
	ed.stepWith(ed.tracker.Next(ed.pointer, primary, secondaryPressed))
}

func (ed *Editor) pan(dx, dy float64) {
	ed.offset = ed.offset.Add(geom.V(dx, dy))
}

func (ed *Editor) handleKey(ev *tcell.EventKey) bool {
	ed.clearFlash()

	switch ev.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyCtrlS:
		ed.save()
		return false
	case tcell.KeyCtrlO:
		ed.prompt("Open: ", ed.config.LastDir+string(filepath.Separator), ed.open)
		return false
	}

	switch ed.mode {
	case ModeInput:
		ed.handleInputKey(ev)
		return false
	case ModeHelp:
		ed.mode = ModeCanvas
		return false
	}
	return ed.handleCanvasKey(ev)
}

func (ed *Editor) handleCanvasKey(ev *tcell.EventKey) bool {
	d := ed.active()
	sel := d.Tree().Selected()

	switch ev.Key() {
	case tcell.KeyEscape:
		ed.step(interact.KeyEscape)
		return false
	case tcell.KeyEnter:
		ed.rename(sel)
		return false
	case tcell.KeyTab:
		d = ed.ws.Cycle()
		ed.showMessage("Diagram: "+ed.title(d), MsgInfo)
		ed.step()
		return false
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		ed.deleteSelected()
		return false
	case tcell.KeyUp:
		ed.pan(0, -1)
		return false
	case tcell.KeyDown:
		ed.pan(0, 1)
		return false
	case tcell.KeyLeft:
		ed.pan(-2, 0)
		return false
	case tcell.KeyRight:
		ed.pan(2, 0)
		return false
	case tcell.KeyRune:
	default:
		return false
	}

	switch ev.Rune() {
	case 'q':
		return true
	case '?':
		ed.mode = ModeHelp
	case 'a':
		ed.addState(sel)
	case 'p':
		ed.fire(sel, kind.MakeParentClicked)
	case 'P':
		ed.fire(sel, kind.MakeParallelClicked)
	case 'l':
		ed.fire(sel, kind.MakeLeafClicked)
	case 'd':
		ed.deleteSelected()
	case 'e':
		ed.rename(sel)
	case 't':
		if sel == tree.None {
			ed.showMessage("Select a source state first", MsgError)
		} else if d.BeginConnect(sel) {
			ed.showMessage("Click the target state (Esc cancels)", MsgInfo)
		}
	case 'x':
		ed.toggleExplicit(sel)
	case 'n':
		moved, err := d.NormalizeRoots()
		if err != nil {
			ed.showMessage(err.Error(), MsgError)
		} else if moved > 0 {
			ed.markModified()
			ed.showMessage(fmt.Sprintf("Moved %d roots into the first", moved), MsgSuccess)
		}
	case 'N':
		ed.newDiagram()
	case 'c':
		ed.showMessage(fmt.Sprintf("Compacted %d entries", ed.ws.Compact()), MsgInfo)
	case 's':
		ed.save()
	case 'S':
		ed.prompt("Save as: ", ed.files[d.ID], ed.saveAs)
	case 'o':
		ed.prompt("Open: ", ed.config.LastDir+string(filepath.Separator), ed.open)
	case 'r':
		ed.renderView()
	case 'w':
		ed.closeDiagram()
	}
	ed.step()
	return false
}

func (ed *Editor) handleInputKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		ed.mode = ModeCanvas
		ed.inputAction = nil
	case tcell.KeyEnter:
		ed.mode = ModeCanvas
		action := ed.inputAction
		ed.inputAction = nil
		if action != nil {
			action(ed.inputBuffer)
		}
		ed.step()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if r := []rune(ed.inputBuffer); len(r) > 0 {
			ed.inputBuffer = string(r[:len(r)-1])
		}
	case tcell.KeyRune:
		ed.inputBuffer += string(ev.Rune())
	}
}

func (ed *Editor) prompt(label, initial string, action func(string)) {
	ed.mode = ModeInput
	ed.inputPrompt = label
	ed.inputBuffer = initial
	ed.inputAction = action
}

// Structural edits

func (ed *Editor) addState(parent tree.NodeID) {
	d := ed.active()
	var id tree.NodeID
	var err error
	if parent == tree.None {
		id, err = d.AddNode(tree.None, fmt.Sprintf("State %d", d.Tree().Len()+1), ed.pointer)
	} else {
		id, err = d.AddChild(parent)
	}
	if err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	d.Select(id)
	ed.markModified()
	ed.showMessage("Added "+ed.nodeName(id), MsgSuccess)
}

func (ed *Editor) fire(id tree.NodeID, ev kind.Event) {
	if id == tree.None {
		ed.showMessage("Nothing selected", MsgError)
		return
	}
	changed, err := ed.active().Fire(id, ev)
	switch {
	case err != nil:
		ed.showMessage(err.Error(), MsgError)
	case changed:
		ed.markModified()
		st, _ := ed.active().Kind(id)
		ed.showMessage(fmt.Sprintf("%s is now %s", ed.nodeName(id), st), MsgSuccess)
	}
}

func (ed *Editor) deleteSelected() {
	d := ed.active()
	sel := d.Tree().Selected()
	if sel == tree.None {
		ed.showMessage("Nothing selected", MsgError)
		return
	}
	name := ed.nodeName(sel)
	if err := d.DeleteNode(sel); err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.markModified()
	ed.showMessage("Deleted "+name, MsgSuccess)
}

func (ed *Editor) rename(id tree.NodeID) {
	if id == tree.None {
		ed.showMessage("Nothing selected", MsgError)
		return
	}
	ed.prompt("Name: ", ed.nodeName(id), func(name string) {
		if name == "" {
			return
		}
		if err := ed.active().Rename(id, name); err != nil {
			ed.showMessage(err.Error(), MsgError)
			return
		}
		ed.markModified()
	})
}

func (ed *Editor) toggleExplicit(id tree.NodeID) {
	d := ed.active()
	n, ok := d.Tree().Node(id)
	if !ok || !d.Tree().IsContainer(id) {
		ed.showMessage("Select a container to resize", MsgError)
		return
	}
	if err := d.SetExplicitBounds(id, !n.Explicit); err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.markModified()
	if n.Explicit {
		ed.showMessage("Drag the bottom-right corner to resize", MsgInfo)
	} else {
		ed.showMessage("Automatic size", MsgInfo)
	}
}

// Diagrams and files

func (ed *Editor) newDiagram() {
	d := diagram.New(append(ed.diagramOptions(), diagram.WithName(fmt.Sprintf("Diagram %d", ed.ws.Len()+1)))...)
	if err := ed.ws.Add(d); err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	_ = ed.ws.Activate(d.ID)
	ed.showMessage("New diagram", MsgInfo)
}

func (ed *Editor) closeDiagram() {
	d := ed.active()
	if ed.modified[d.ID] {
		ed.showMessage("Unsaved changes: save first (s)", MsgError)
		return
	}
	ed.ws.Remove(d.ID)
	delete(ed.files, d.ID)
	delete(ed.modified, d.ID)
	if ed.ws.Len() == 0 {
		ed.newDiagram()
	}
}

func (ed *Editor) title(d *diagram.Diagram) string {
	if path := ed.files[d.ID]; path != "" {
		return filepath.Base(path)
	}
	if d.Name != "" {
		return d.Name
	}
	return "[New]"
}

func (ed *Editor) open(path string) {
	if err := ed.loadFile(path); err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.showMessage("Opened "+filepath.Base(path), MsgSuccess)
}

func (ed *Editor) loadFile(path string) error {
	var s *scene.Scene
	var err error
	if filepath.Ext(path) == ".json" {
		var data []byte
		if data, err = os.ReadFile(path); err == nil {
			s, err = scene.Unmarshal(data)
		}
	} else {
		s, err = scene.ReadFile(path)
	}
	if err != nil {
		return err
	}

	d, err := s.Diagram(ed.diagramOptions()...)
	if err != nil {
		return err
	}
	if existing, ok := ed.ws.Get(d.ID); ok {
		// Reopening a file replaces the open copy
		ed.ws.Remove(existing.ID)
	}
	if err := ed.ws.Add(d); err != nil {
		return err
	}
	_ = ed.ws.Activate(d.ID)
	ed.files[d.ID] = path
	ed.modified[d.ID] = false
	ed.rememberDir(path)
	ed.log.Info("opened", "path", path, "diagram", d.ID.String())
	return nil
}

func (ed *Editor) save() {
	d := ed.active()
	path := ed.files[d.ID]
	if path == "" {
		ed.prompt("Save as: ", ed.config.LastDir+string(filepath.Separator), ed.saveAs)
		return
	}
	ed.saveAs(path)
}

func (ed *Editor) saveAs(path string) {
	if err := ed.saveFile(path); err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.showMessage("Saved "+filepath.Base(path), MsgSuccess)
}

func (ed *Editor) saveFile(path string) error {
	d := ed.active()
	s := scene.FromDiagram(d)
	var err error
	switch filepath.Ext(path) {
	case ".json":
		var data []byte
		if data, err = scene.Marshal(s); err == nil {
			err = os.WriteFile(path, data, 0644)
		}
	case ".hsm":
		err = scene.WriteFile(path, s, "")
	default:
		return fmt.Errorf("unknown file type: %s (use .hsm or .json)", filepath.Ext(path))
	}
	if err != nil {
		return err
	}
	ed.files[d.ID] = path
	ed.modified[d.ID] = false
	ed.rememberDir(path)
	return nil
}

func (ed *Editor) rememberDir(path string) {
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil || dir == ed.config.LastDir {
		return
	}
	ed.config.LastDir = dir
	if err := SaveConfig(ed.config); err != nil {
		ed.log.Warn("saving config failed", "err", err)
	}
}

// renderView exports the active diagram and opens it in the system viewer.
func (ed *Editor) renderView() {
	d := ed.active()
	tmpFile, err := os.CreateTemp("", "hsm-*."+ed.config.FileType)
	if err != nil {
		ed.showMessage("Failed to create temp file", MsgError)
		return
	}
	tmpPath := tmpFile.Name()

	if ed.config.FileType == "svg" {
		opts := render.DefaultSVGOptions()
		opts.Padding, opts.FontSize, opts.LineWidth = 2, 0.8, 0.1
		_, err = tmpFile.WriteString(d.RenderSVG(opts))
	} else {
		// One cell renders as a 10px square
		opts := render.DefaultPNGOptions()
		opts.Scale, opts.FontSize = 10, 0.9
		err = d.RenderPNG(tmpFile, opts)
	}
	tmpFile.Close()
	if err != nil {
		ed.showMessage("Render failed: "+err.Error(), MsgError)
		os.Remove(tmpPath)
		return
	}

	var openCmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		openCmd = exec.Command("open", tmpPath)
	case "windows":
		openCmd = exec.Command("cmd", "/c", "start", "", tmpPath)
	default: // linux, etc
		openCmd = exec.Command("xdg-open", tmpPath)
	}
	if err := openCmd.Start(); err != nil {
		ed.showMessage("Failed to open viewer: "+err.Error(), MsgError)
		os.Remove(tmpPath)
		return
	}
	ed.showMessage("Opened in viewer: "+tmpPath, MsgInfo)
}

func (ed *Editor) showMessage(msg string, msgType MessageType) {
	ed.message = msg
	ed.messageType = msgType
	ed.messageFlashStart = nowMillis()
	if ed.screen != nil {
		ed.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}
}

func (ed *Editor) clearFlash() {
	ed.messageFlashStart = 0
}

func nowMillis() int64 { return time.Now().UnixMilli() }
