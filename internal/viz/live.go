package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/huckl3b3rry87/ctrlab/internal/dynamo"
)

const historyCapacity = 600

type TickMsg time.Time

// Live is an interactive view of a running loop: the plant output and
// control input scroll by while controller gains are tuned from the
// keyboard.
type Live struct {
	sys        dynamo.OutputSystem
	integrator dynamo.Integrator
	controller dynamo.Controller
	title      string

	state dynamo.State
	u     dynamo.Input
	t, dt float64

	outputHist []float64
	inputHist  []float64

	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int

	initialState dynamo.State
	running      bool
}

func NewLive(sys dynamo.OutputSystem, integ dynamo.Integrator, ctrl dynamo.Controller, x0 []float64, dt float64, title string) Live {
	params := make(map[string]float64)
	if c, ok := ctrl.(dynamo.Configurable); ok {
		for k, v := range c.GetParams() {
			params[k] = v
		}
	}
	keys := make([]string, 0, len(params))
	initialParams := make(map[string]float64)
	for k, v := range params {
		keys = append(keys, k)
		if v == 0 {
			v = 1e-6
		}
		initialParams[k] = v
	}
	sort.Strings(keys)

	initial := make(dynamo.State, len(x0))
	copy(initial, x0)
	state := make(dynamo.State, len(x0))
	copy(state, x0)

	return Live{
		sys:           sys,
		integrator:    integ,
		controller:    ctrl,
		title:         title,
		state:         state,
		u:             make(dynamo.Input, sys.InputDim()),
		dt:            dt,
		outputHist:    make([]float64, 0, historyCapacity),
		inputHist:     make([]float64, 0, historyCapacity),
		params:        params,
		initialParams: initialParams,
		paramKeys:     keys,
		initialState:  initial,
		running:       true,
	}
}

func (m Live) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		}
	case TickMsg:
		if m.running {
			// Several physics steps per frame keeps the plot moving at
			// a useful speed without a huge dt.
			for i := 0; i < 4; i++ {
				m.step()
			}
		}
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Live) step() {
	m.u = m.controller.Compute(m.state, m.t)
	m.state = m.integrator.Step(m.sys, m.state, m.u, m.t, m.dt)
	m.t += m.dt

	y := m.sys.Output(m.state, m.u, m.t)
	if len(y) > 0 {
		m.outputHist = append(m.outputHist, y[0])
	}
	if len(m.u) > 0 {
		m.inputHist = append(m.inputHist, m.u[0])
	}
	if len(m.outputHist) > historyCapacity {
		m.outputHist = m.outputHist[1:]
	}
	if len(m.inputHist) > historyCapacity {
		m.inputHist = m.inputHist[1:]
	}
}

func (m *Live) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

func (m *Live) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	newVal := m.params[key] * factor
	if c, ok := m.controller.(dynamo.Configurable); ok {
		if err := c.SetParam(key, newVal); err != nil {
			return
		}
	}
	m.params[key] = newVal
}

func (m *Live) reset() {
	m.t = 0
	m.state = make(dynamo.State, len(m.initialState))
	copy(m.state, m.initialState)
	m.u = make(dynamo.Input, m.sys.InputDim())
	m.outputHist = m.outputHist[:0]
	m.inputHist = m.inputHist[:0]
	for k, v := range m.initialParams {
		m.params[k] = v
		if c, ok := m.controller.(dynamo.Configurable); ok {
			c.SetParam(k, v)
		}
	}
}

func (m Live) View() string {
	var charts strings.Builder
	if len(m.outputHist) > 1 {
		charts.WriteString(graphStyle.Render(asciigraph.Plot(m.outputHist,
			asciigraph.Height(8), asciigraph.Width(60), asciigraph.Caption("output y"))) + "\n")
	}
	if len(m.inputHist) > 1 {
		charts.WriteString(graphStyle.Render(asciigraph.Plot(m.inputHist,
			asciigraph.Height(6), asciigraph.Width(60), asciigraph.Caption("input u"))) + "\n")
	}
	chartView := canvasStyle.Render(charts.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.t)) + "\n")
	if len(m.outputHist) > 0 {
		s.WriteString(labelStyle.Render("Output") + valueStyle.Render(fmt.Sprintf("%.4f", m.outputHist[len(m.outputHist)-1])) + "\n")
	}
	if len(m.inputHist) > 0 {
		s.WriteString(labelStyle.Render("Input") + valueStyle.Render(fmt.Sprintf("%.4f", m.inputHist[len(m.inputHist)-1])) + "\n")
	}

	s.WriteString("\nGAINS\n")
	if len(m.params) > 0 {
		for i, k := range m.paramKeys {
			val, initial := m.params[k], m.initialParams[k]
			barWidth, ratio := 10, val/(2.0*initial)
			if ratio > 1 {
				ratio = 1
			} else if ratio < 0 {
				ratio = 0
			}
			filled := int(ratio * float64(barWidth))
			bar := "[" + strings.Repeat("=", filled) + strings.Repeat("-", barWidth-filled) + "]"
			line := fmt.Sprintf("%-10s %s %.3f", k, bar, val)
			if i == m.selected {
				s.WriteString(activeParamStyle.Render("> "+line) + "\n")
			} else {
				s.WriteString("  " + labelStyle.Render(line) + "\n")
			}
		}
	} else {
		s.WriteString(labelStyle.Render("  (none)") + "\n")
	}
	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\nTab:Select ↑↓:Tune"))

	return lipgloss.JoinHorizontal(lipgloss.Top, chartView, statsStyle.Render(s.String()))
}
