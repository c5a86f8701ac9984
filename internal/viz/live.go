package viz

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/fdgsim/internal/dynamo"
	"github.com/san-kum/fdgsim/internal/metrics"
	"github.com/san-kum/fdgsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	defaultWidth    = 80
	defaultHeight   = 24
	historyCapacity = 600
	statsWidth      = 50
)

type TickMsg time.Time

type Options struct {
	Title         string
	Width, Height int
	// StepsPerFrame is how many Advance calls run per rendered frame.
	StepsPerFrame int
	FPS           int
	Epsilon       float64
	SettleSteps   int
	Theme         string
	GIFPath       string
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = defaultWidth
	}
	if o.Height <= 0 {
		o.Height = defaultHeight
	}
	if o.StepsPerFrame <= 0 {
		o.StepsPerFrame = 1
	}
	if o.FPS <= 0 {
		o.FPS = 30
	}
	if o.GIFPath == "" {
		o.GIFPath = "layout.gif"
	}
	if o.Title == "" {
		o.Title = "layout"
	}
	return o
}

// Model is the Bubble Tea front end: every tick it advances the simulation
// and redraws the node positions.
type Model[N, E any] struct {
	sim          *sim.Simulation[N, E]
	initial      sim.Parameters
	opts         Options
	canvas       *Canvas
	camera       *Camera
	theme        Theme
	styles       styles
	running      bool
	autoFit      bool
	radius       float64
	stats        sim.Stats
	displacement []float64
	energy       []float64
	settle       *metrics.Settle
	paramKeys    []string
	selected     int
	showHelp     bool
	recorder     *Recorder
	recording    bool
	status       string
}

func NewModel[N, E any](s *sim.Simulation[N, E], opts Options) Model[N, E] {
	opts = opts.withDefaults()
	keys := make([]string, 0)
	for k := range s.Parameters().Force.Get() {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	theme := GetTheme(opts.Theme)
	m := Model[N, E]{
		sim:          s,
		initial:      s.Parameters(),
		opts:         opts,
		canvas:       NewCanvas(opts.Width, opts.Height),
		camera:       NewCamera(),
		theme:        theme,
		styles:       stylesFor(theme),
		running:      true,
		autoFit:      true,
		radius:       1,
		displacement: make([]float64, 0, historyCapacity),
		energy:       make([]float64, 0, historyCapacity),
		settle:       metrics.NewSettle(opts.Epsilon, opts.SettleSteps),
		paramKeys:    keys,
		recorder:     NewRecorder(),
	}
	m.camera.Perspective = s.Parameters().Dimensions == dynamo.ThreeD
	m.draw()
	return m
}

func (m Model[N, E]) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model[N, E]) Init() tea.Cmd {
	return m.tick()
}

func (m Model[N, E]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w := max(20, msg.Width-statsWidth-6)
		h := max(10, msg.Height-4)
		m.canvas = NewCanvas(w, h)
		m.draw()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.recording {
				m.stopRecording()
			}
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			m.step()
		case "r":
			m.reset()
		case "tab":
			m.selected = (m.selected + 1) % max(1, len(m.paramKeys))
		case "up", "k":
			m.adjustParam(1.1)
		case "down", "j":
			m.adjustParam(1 / 1.1)
		case "2":
			m.setDimensions(dynamo.TwoD)
		case "3":
			m.setDimensions(dynamo.ThreeD)
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "f":
			m.autoFit = !m.autoFit
		case "c":
			m.camera.Reset()
		case "t":
			m.theme = m.theme.next()
			m.styles = stylesFor(m.theme)
		case "g":
			if m.recording {
				m.stopRecording()
			} else {
				m.recording = true
				m.status = "recording"
			}
		case "?":
			m.showHelp = !m.showHelp
		}
		m.draw()
	case TickMsg:
		if m.running {
			for range m.opts.StepsPerFrame {
				m.step()
			}
		}
		m.draw()
		if m.recording {
			m.recorder.Capture(m.canvas)
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model[N, E]) step() {
	m.stats = m.sim.Advance()
	m.settle.Observe(m.stats)
	m.displacement = pushBounded(m.displacement, m.stats.MaxDisplacement)
	m.energy = pushBounded(m.energy, m.stats.KineticEnergy)
}

func pushBounded(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model[N, E]) reset() {
	if err := m.sim.SetParameters(m.initial); err != nil {
		m.status = err.Error()
	}
	m.sim.ResetNodePlacement()
	m.settle.Reset()
	m.displacement = m.displacement[:0]
	m.energy = m.energy[:0]
	m.stats = sim.Stats{}
	m.camera.Perspective = m.initial.Dimensions == dynamo.ThreeD
	m.status = "reset"
}

func (m *Model[N, E]) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	p := m.sim.Parameters()
	v := p.Force.Get()[key]
	if v == 0 && factor > 1 {
		v = 0.01
	}
	if err := p.Force.Set(key, v*factor); err != nil {
		m.status = err.Error()
		return
	}
	if err := m.sim.SetParameters(p); err != nil {
		m.status = err.Error()
		return
	}
	m.settle.Reset()
	m.status = fmt.Sprintf("%s = %.4g", key, p.Force.Get()[key])
}

func (m *Model[N, E]) setDimensions(d dynamo.Dimensions) {
	p := m.sim.Parameters()
	if p.Dimensions == d {
		return
	}
	p.Dimensions = d
	if err := m.sim.SetParameters(p); err != nil {
		m.status = err.Error()
		return
	}
	m.camera.Perspective = d == dynamo.ThreeD
	if d == dynamo.ThreeD {
		m.sim.ResetNodePlacement()
	}
	m.settle.Reset()
	m.status = "switched to " + d.String()
}

func (m *Model[N, E]) stopRecording() {
	m.recording = false
	if err := m.recorder.Save(m.opts.GIFPath); err != nil {
		m.status = "gif: " + err.Error()
		return
	}
	m.status = "saved " + m.opts.GIFPath
}

func (m *Model[N, E]) draw() {
	scene := SceneOf(m.sim.Graph())
	if m.autoFit {
		center, radius := scene.Bounds()
		m.camera.Center = center
		m.radius = radius
	}
	m.canvas.Clear()
	Render(m.canvas, m.camera, scene, m.radius)
}

func (m Model[N, E]) View() string {
	st := m.styles
	var s strings.Builder

	s.WriteString(st.header.Render(strings.ToUpper(m.opts.Title)) + "\n")

	status := st.good.Render("RUNNING")
	switch {
	case m.settle.Settled():
		status = st.good.Render(fmt.Sprintf("SETTLED @ %d", int(m.settle.Value())))
	case !m.running:
		status = st.warn.Render("PAUSED")
	}
	if m.recording {
		status += "  " + st.warn.Render(fmt.Sprintf("REC %d", m.recorder.Frames()))
	}
	s.WriteString(status + "\n")

	if len(m.displacement) > 1 {
		chart := asciigraph.Plot(m.displacement,
			asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("max displacement"))
		s.WriteString(st.chart.Render(chart) + "\n")
	}

	g := m.sim.Graph()
	p := m.sim.Parameters()
	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Step", fmt.Sprintf("%d", m.sim.Steps()))
	row("Nodes", fmt.Sprintf("%d", g.NodeCount()))
	row("Edges", fmt.Sprintf("%d", g.EdgeCount()))
	row("Dimensions", p.Dimensions.String())
	row("Kinetic", fmt.Sprintf("%.4g", m.stats.KineticEnergy))
	row("Energy", Sparkline(m.energy, 24))
	row("Max disp", fmt.Sprintf("%.4g", m.stats.MaxDisplacement))
	row("Net force", fmt.Sprintf("%.2e", r3.Norm(m.stats.NetForce)))
	if m.stats.Frozen > 0 {
		row("Frozen", st.warn.Render(fmt.Sprintf("%d", m.stats.Frozen)))
	}
	if m.opts.SettleSteps > 0 {
		calm := settleProgress(m.displacement, m.opts.Epsilon, m.opts.SettleSteps)
		row("Settle", ProgressBar(calm, 20))
	}

	s.WriteString("\nPARAMETERS\n")
	values := p.Force.Get()
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-13s %.4g", k, values[k])
		if i == m.selected {
			s.WriteString(st.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.label.UnsetWidth().Render(line) + "\n")
		}
	}

	if m.status != "" {
		s.WriteString("\n" + st.value.Render(m.status) + "\n")
	}
	s.WriteString(st.help.Render("SP:Pause N:Step R:Reset Q:Quit\nTab/↑↓:Tune 2/3:Dims ?:Help"))

	canvasView := st.canvas.Render(m.canvas.String())
	statsView := st.stats.Render(s.String())
	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return st.help.Render(helpText) + "\n" + main
	}
	return main
}

// settleProgress is the fraction of the settle window covered by the current
// run of calm steps.
func settleProgress(history []float64, eps float64, window int) float64 {
	calm := 0
	for i := len(history) - 1; i >= 0 && history[i] < eps; i-- {
		calm++
	}
	return math.Min(1, float64(calm)/float64(window))
}

const helpText = `Space   pause or resume      N    single step
R       reset placement      Q    quit
Tab     next parameter       ↑/↓  scale parameter by 10%
2 / 3   switch dimensions    F    toggle auto fit
X/Y     rotate (shift: back) +/-  zoom
C       reset camera         T    cycle theme
G       toggle GIF capture   ?    toggle this help`
