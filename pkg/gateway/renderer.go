package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/ckumpe/robot-inventor-tools/pkg/message"
)

// Renderer turns a classified message into a styled line for stdout,
// mirroring original_source/tools/gateway.py's HubConnection.print helper.
// Tag styles follow the teacher's lipgloss.NewStyle().Foreground(...)
// pattern (cmd/today.go) rather than the original's hand-rolled ANSI codes.
type Renderer struct {
	request  lipgloss.Style
	response lipgloss.Style
	errStyle lipgloss.Style
	jsonErr  lipgloss.Style
	unknown  lipgloss.Style
	runtime  lipgloss.Style
	output   lipgloss.Style
	info     lipgloss.Style
	dim      lipgloss.Style
}

// NewRenderer builds the tag styles spec §4.9 assigns: request/response
// yellow, error/json-error/runtime red, unknown/info/storage/display/
// firmware/program blue, output green.
func NewRenderer() *Renderer {
	return &Renderer{
		request:  lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		response: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		errStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		jsonErr:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		unknown:  lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		runtime:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		output:   lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		info:     lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

const tagWidth = 17

func (r *Renderer) tag(style lipgloss.Style, label string) string {
	padded := fmt.Sprintf("%-*s", tagWidth, label)
	return style.Render(padded)
}

// Line renders one console line from a tag label and its style, an optional
// id, and a payload already decoded to a display value. The result carries
// no terminator.
func (r *Renderer) Line(tag string, style lipgloss.Style, id string, payload any) string {
	body := stringify(payload)
	if id != "" {
		body = r.dim.Render(id) + " " + body
	}
	return r.tag(style, tag) + body
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// Every rendered line carries its own terminator so callers can fmt.Print
// it verbatim: "\n" for ordinary console lines, "\r" for the sensor status
// line that overwrites itself in place (spec §4.4).

// Request renders an inbound RPC request from the hub.
func (r *Renderer) Request(id string, method string, params json.RawMessage) string {
	return r.Line("REQUEST:", r.request, id, fmt.Sprintf("%s: %s", method, string(params))) + "\n"
}

// Response renders a reply from the hub.
func (r *Renderer) Response(id string, result json.RawMessage) string {
	return r.Line("RESPONSE:", r.response, id, string(result)) + "\n"
}

// Output renders a decoded userProgram.print payload.
func (r *Renderer) Output(id string, text string) string {
	return r.Line("OUTPUT:", r.output, id, text) + "\n"
}

// Error renders a decoded error payload.
func (r *Renderer) Error(id string, decoded any) string {
	return r.Line("ERROR:", r.errStyle, id, decoded) + "\n"
}

// JSONError renders a malformed-JSON hub line.
func (r *Renderer) JSONError(raw string) string {
	return r.Line("JSON ERROR:", r.jsonErr, "", raw) + "\n"
}

// Unknown renders a message of unrecognised shape.
func (r *Renderer) Unknown(raw string) string {
	return r.Line("UNKNOWN:", r.unknown, "", raw) + "\n"
}

// Failed renders any other decode failure without aborting the session.
func (r *Renderer) Failed(err error, raw string) string {
	return r.Line("FAILED:", r.errStyle, "", fmt.Sprintf("%s: %s", err, raw)) + "\n"
}

// Runtime renders a decoded runtime_error notification.
func (r *Renderer) Runtime(parts []string) string {
	return r.Line("RUNTIME:", r.runtime, "", parts) + "\n"
}

// Generic renders the informational-only notification kinds (storage,
// display, firmware, program) under a shared blue tag.
func (r *Renderer) Generic(tag string, payload json.RawMessage) string {
	return r.Line(tag, r.info, "", string(payload)) + "\n"
}

// Info renders a button or gesture notification.
func (r *Renderer) Info(text string) string {
	return r.Line("INFO:", r.info, "", text) + "\n"
}

// Unhandled renders a notification opcode not in the known table.
func (r *Renderer) Unhandled(opcode int, payload json.RawMessage) string {
	return r.info.Render(fmt.Sprintf("%d %s", opcode, string(payload))) + "\n"
}

// Sensor renders the overwrite-in-place status line for sensor
// notifications, terminated by \r per spec §4.4.
func (r *Renderer) Sensor(sn message.SensorNotification, chargedPercent int) string {
	labels := "ABCDEF"
	var body string
	for i, p := range sn.Ports {
		body += string(labels[i]) + ":" + portGlyph(p) + " | "
	}
	body += fmt.Sprintf("a=(%v %v %v) ", sn.Accel[0], sn.Accel[1], sn.Accel[2])
	body += fmt.Sprintf("v=(%v %v %v) ", sn.Gyro[0], sn.Gyro[1], sn.Gyro[2])
	body += fmt.Sprintf("p=(%v %v %v) ", sn.Pos[0], sn.Pos[1], sn.Pos[2])
	body += fmt.Sprintf("Bat:%3d%% | ", chargedPercent)
	body += fmt.Sprintf("Display:%s | ", stringify(sn.Display))
	body += fmt.Sprintf("Time:%v", sn.Time)
	return body + "\r"
}

func portGlyph(p message.Port) string {
	switch p.GadgetID {
	case message.GadgetDisconnected:
		return "-"
	case message.GadgetMediumMotor:
		if len(p.Values) == 4 {
			return fmt.Sprintf("%4v°%3v%%", p.Values[2], p.Values[0])
		}
		return "?"
	case message.GadgetColorSensor:
		if len(p.Values) > 0 {
			return fmt.Sprintf("C%v", p.Values[0])
		}
		return "C?"
	case message.GadgetDistanceSensor:
		if len(p.Values) > 0 && p.Values[0] != 0 {
			return fmt.Sprintf("%3vcm", p.Values[0])
		}
		return "  cm"
	default:
		return stringify(p.Values)
	}
}
