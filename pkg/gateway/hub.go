package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/ckumpe/robot-inventor-tools/pkg/message"
)

// HubSession is the process-lifetime singleton described in spec §3: the
// charged/charging state updated from battery notifications (the hub
// transport itself is held by Loop). It owns dispatch of classified hub lines to the console
// renderer, grounded on original_source/tools/gateway.py's parse_line /
// handle_* family.
type HubSession struct {
	renderer *Renderer

	Charged  int
	Charging int // 0 idle, 1 charging, 2 unknown
}

// NewHubSession constructs a hub session using the given renderer.
func NewHubSession(r *Renderer) *HubSession {
	return &HubSession{renderer: r}
}

// Dispatch classifies a raw hub line and renders the human-readable console
// output. Malformed JSON and unrecognised shapes are logged but never
// abort the session, per spec §4.4 and §7.
func (h *HubSession) Dispatch(raw []byte) string {
	msg, err := message.Parse(raw)
	if err != nil {
		return h.renderer.JSONError(string(raw))
	}

	switch msg.Kind {
	case message.KindRequest:
		return h.dispatchRequest(msg)
	case message.KindResponse:
		return h.renderer.Response(msg.ID, msg.Result)
	case message.KindError:
		decoded, derr := message.DecodeError(msg.ErrorB64)
		if derr != nil {
			return h.renderer.Failed(derr, string(raw))
		}
		return h.renderer.Error(msg.ID, decoded)
	case message.KindNotification:
		return h.dispatchNotification(msg)
	default:
		return h.renderer.Unknown(string(raw))
	}
}

func (h *HubSession) dispatchRequest(msg message.Message) string {
	name, ok := msg.MethodName()
	if ok && name == "userProgram.print" {
		var params struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return h.renderer.Failed(err, string(msg.Params))
		}
		text, err := message.DecodeBase64UTF8(params.Value)
		if err != nil {
			return h.renderer.Failed(err, string(msg.Params))
		}
		return h.renderer.Output(msg.ID, text)
	}
	return h.renderer.Request(msg.ID, name, msg.Params)
}

func (h *HubSession) dispatchNotification(msg message.Message) string {
	if name, ok := msg.MethodName(); ok {
		if name == message.NotifyRuntimeErrorTag {
			parts, err := message.DecodeRuntimeError(msg.Params)
			if err != nil {
				return h.renderer.Failed(err, string(msg.Params))
			}
			return h.renderer.Runtime(parts)
		}
		return h.renderer.Unknown(fmt.Sprintf("%s %s", name, msg.Params))
	}

	opcode, ok := msg.MethodOpcode()
	if !ok {
		return h.renderer.Unknown(string(msg.Params))
	}

	switch opcode {
	case message.NotifySensor:
		sn, err := message.DecodeSensorNotification(msg.Params)
		if err != nil {
			return h.renderer.Failed(err, string(msg.Params))
		}
		return h.renderer.Sensor(sn, h.Charged)
	case message.NotifyStorage:
		return h.renderer.Generic("STORAGE:", msg.Params)
	case message.NotifyBattery:
		bat, err := message.DecodeBatteryNotification(msg.Params)
		if err != nil {
			return h.renderer.Failed(err, string(msg.Params))
		}
		h.Charged = bat.ChargePercent
		h.Charging = bat.ChargingState
		return ""
	case message.NotifyButton:
		btn, err := message.DecodeButtonNotification(msg.Params)
		if err != nil {
			return h.renderer.Failed(err, string(msg.Params))
		}
		return h.renderer.Info(fmt.Sprintf("Button pressed: %d %4d", btn.Button, btn.DurationMs))
	case message.NotifyGesture:
		return h.renderer.Info(fmt.Sprintf("Interaction: %s", msg.Params))
	case message.NotifyDisplay:
		return h.renderer.Generic("DISPLAY:", msg.Params)
	case message.NotifyFirmware:
		return h.renderer.Generic("FIRMWARE:", msg.Params)
	case message.NotifyProgram:
		return h.renderer.Generic("PROGRAM:", msg.Params)
	default:
		return h.renderer.Unhandled(opcode, msg.Params)
	}
}
