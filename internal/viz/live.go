package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/coldsim/internal/particles"
	"github.com/san-kum/coldsim/internal/sim"
)

const (
	width           = 60
	height          = 20
	historyCapacity = 600
	maxStepsPerTick = 256
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(40)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

type TickMsg time.Time

// Model steps a simulator on every tick and draws the x-z projection of
// the ensemble along with the particle count history.
type Model struct {
	build        sim.BuildFunc
	seed         int64
	sim          *sim.Simulator
	ensemble     *particles.Ensemble
	t, dt        float64
	steps        int
	stepsPerTick int
	running      bool
	title        string
	canvas       *Canvas
	view         Viewport
	counts       []float64
	injected     int
	absorbed     int
	err          error
}

// NewModel builds a live view integrating with step dt the simulator and
// ensemble returned by build(seed). Reset calls build again, so sources
// replay their random streams and sink counters start over.
func NewModel(build sim.BuildFunc, seed int64, dt float64, title string) (Model, error) {
	s, e, err := build(seed)
	if err != nil {
		return Model{}, err
	}
	return Model{
		build:        build,
		seed:         seed,
		sim:          s,
		ensemble:     e,
		dt:           dt,
		stepsPerTick: 1,
		running:      true,
		title:        title,
		canvas:       NewCanvas(width, height),
		view:         Viewport{MinX: -1, MaxX: 1, MinY: -1, MaxY: 1},
		counts:       make([]float64, 0, historyCapacity),
	}, nil
}

// WithViewport sets the world rectangle shown on the canvas.
func (m Model) WithViewport(v Viewport) Model {
	m.view = v
	return m
}

// WithStepsPerTick sets how many simulation steps run per frame.
func (m Model) WithStepsPerTick(n int) Model {
	m.stepsPerTick = clampSteps(n)
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			m.stepsPerTick = clampSteps(m.stepsPerTick * 2)
		case "-", "_":
			m.stepsPerTick = clampSteps(m.stepsPerTick / 2)
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

func clampSteps(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxStepsPerTick {
		return maxStepsPerTick
	}
	return n
}

func (m *Model) advance() {
	for i := 0; i < m.stepsPerTick; i++ {
		rec, err := m.sim.Step(m.ensemble, m.t, m.dt)
		if err != nil {
			m.err = &sim.StepError{Step: m.steps, Time: m.t, Wrapped: err}
			m.running = false
			return
		}
		m.t = rec.Time
		m.steps++
		m.injected += rec.Injected
		m.absorbed += rec.TotalAbsorbed()
	}

	if len(m.counts) >= historyCapacity {
		m.counts = m.counts[1:]
	}
	m.counts = append(m.counts, float64(m.ensemble.NumPtcls()))
}

func (m *Model) reset() {
	s, e, err := m.build(m.seed)
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.sim, m.ensemble = s, e
	m.t = 0
	m.steps = 0
	m.injected = 0
	m.absorbed = 0
	m.err = nil
	m.counts = m.counts[:0]
}

// Ensemble returns the ensemble currently shown.
func (m Model) Ensemble() *particles.Ensemble { return m.ensemble }

// Time returns the simulated time.
func (m Model) Time() float64 { return m.t }

func (m Model) draw() {
	m.canvas.Clear()
	for _, sk := range m.sim.Sinks() {
		if p, ok := sk.(*particles.SinkPlane); ok {
			m.drawPlane(p)
		}
	}
	for _, x := range m.ensemble.Positions() {
		m.view.Plot(m.canvas, x.X, x.Z)
	}
}

// drawPlane draws the trace of p in the x-z plane.
func (m Model) drawPlane(p *particles.SinkPlane) {
	n := p.Normal
	var a, b r3.Vec
	switch {
	case n.Z != 0:
		z := func(x float64) float64 { return p.Point.Z - n.X*(x-p.Point.X)/n.Z }
		a = r3.Vec{X: m.view.MinX, Z: z(m.view.MinX)}
		b = r3.Vec{X: m.view.MaxX, Z: z(m.view.MaxX)}
	case n.X != 0:
		a = r3.Vec{X: p.Point.X, Z: m.view.MinY}
		b = r3.Vec{X: p.Point.X, Z: m.view.MaxY}
	default:
		return
	}
	ax, az, bx, bz, visible := m.view.ClipSegment(a.X, a.Z, b.X, b.Z)
	if !visible {
		return
	}
	x0, y0, ok0 := m.view.Pixel(m.canvas, ax, az)
	x1, y1, ok1 := m.view.Pixel(m.canvas, bx, bz)
	if ok0 && ok1 {
		m.canvas.DrawLine(x0, y0, x1, y1)
	}
}

func (m Model) View() string {
	m.draw()

	status := StatusRunning.Render("RUNNING")
	switch {
	case m.err != nil:
		status = StatusError.Render("ERROR")
	case !m.running:
		status = StatusPaused.Render("PAUSED")
	}

	var stats strings.Builder
	stats.WriteString(Title.Render(m.title) + "\n\n")
	row := func(label, value string) {
		stats.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("status", status)
	row("time", fmt.Sprintf("%.4f", m.t))
	row("steps", fmt.Sprintf("%d", m.steps))
	row("steps/frame", fmt.Sprintf("%d", m.stepsPerTick))
	row("particles", fmt.Sprintf("%d", m.ensemble.NumPtcls()))
	row("injected", fmt.Sprintf("%d", m.injected))
	row("absorbed", fmt.Sprintf("%d", m.absorbed))
	if m.err != nil {
		stats.WriteString("\n" + StatusError.Render(m.err.Error()) + "\n")
	}

	graph := ""
	if len(m.counts) > 1 {
		graph = graphStyle.Render(asciigraph.Plot(m.counts,
			asciigraph.Height(6),
			asciigraph.Width(width),
			asciigraph.Caption("particles"),
		))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.canvas.String()),
		statsStyle.Render(stats.String()),
	)
	help := KeyHint.Render("space pause  r reset  +/- speed  q quit")
	return lipgloss.JoinVertical(lipgloss.Left, body, graph, help)
}
