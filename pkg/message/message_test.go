package message

import "testing"

func TestClassifyResponse(t *testing.T) {
	m, err := Parse([]byte(`{"i":"abc","r":42}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Kind != KindResponse {
		t.Fatalf("expected response, got %s", m.Kind)
	}
	if m.ID != "abc" {
		t.Fatalf("expected id abc, got %q", m.ID)
	}
	if string(m.Result) != "42" {
		t.Fatalf("expected result 42, got %s", m.Result)
	}
}

func TestClassifyRequest(t *testing.T) {
	m, err := Parse([]byte(`{"i":"x1","m":"program_execute","p":{"slotid":0}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Kind != KindRequest {
		t.Fatalf("expected request, got %s", m.Kind)
	}
	name, ok := m.MethodName()
	if !ok || name != "program_execute" {
		t.Fatalf("expected method program_execute, got %q ok=%v", name, ok)
	}
}

func TestClassifyError(t *testing.T) {
	m, err := Parse([]byte(`{"i":"x1","e":"eyJtc2ciOiJib29tIn0="}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Kind != KindError {
		t.Fatalf("expected error, got %s", m.Kind)
	}
	body, err := DecodeError(m.ErrorB64)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	asMap, ok := body.(map[string]any)
	if !ok || asMap["msg"] != "boom" {
		t.Fatalf("unexpected decoded body: %#v", body)
	}
}

func TestClassifyNotification(t *testing.T) {
	m, err := Parse([]byte(`{"m":2,"p":[7600,83,1]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Kind != KindNotification {
		t.Fatalf("expected notification, got %s", m.Kind)
	}
	opcode, ok := m.MethodOpcode()
	if !ok || opcode != NotifyBattery {
		t.Fatalf("expected battery opcode, got %d ok=%v", opcode, ok)
	}
	bat, err := DecodeBatteryNotification(m.Params)
	if err != nil {
		t.Fatalf("decode battery: %v", err)
	}
	if bat.ChargePercent != 83 || bat.ChargingState != 1 {
		t.Fatalf("unexpected battery: %+v", bat)
	}
}

func TestClassifyUnknownShape(t *testing.T) {
	m, err := Parse([]byte(`{"foo":"bar"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Kind != KindUnknown {
		t.Fatalf("expected unknown, got %s", m.Kind)
	}
}

func TestParseMalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`not json at all`))
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestUserProgramPrintRoutesThroughRequest(t *testing.T) {
	m, err := Parse([]byte(`{"i":"z9","m":"userProgram.print","p":{"value":"aGVsbG8="}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Kind != KindRequest {
		t.Fatalf("expected userProgram.print to route through Request, got %s", m.Kind)
	}
	name, _ := m.MethodName()
	if name != "userProgram.print" {
		t.Fatalf("unexpected method %q", name)
	}
}

func TestDecodeRuntimeErrorMixedEncoding(t *testing.T) {
	out, err := DecodeRuntimeError([]byte(`["aGVsbG8=", "not-base64!!"]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out[0] != "hello" {
		t.Fatalf("expected decoded hello, got %q", out[0])
	}
	if out[1] != "not-base64!!" {
		t.Fatalf("expected passthrough, got %q", out[1])
	}
}

func TestDecodeSensorNotificationPortGadgets(t *testing.T) {
	params := []byte(`[[0,0],[61,[9]],[62,[30]],[75,[50,0,180,1]],[0,0],[0,0],[100,200,300],[1,2,3],[10,20,30],"disp",12345]`)
	sn, err := DecodeSensorNotification(params)
	if err != nil {
		t.Fatalf("decode sensor: %v", err)
	}
	if sn.Ports[0].GadgetID != GadgetDisconnected {
		t.Fatalf("port0 expected disconnected, got %d", sn.Ports[0].GadgetID)
	}
	if sn.Ports[1].GadgetID != GadgetColorSensor || sn.Ports[1].Values[0] != 9 {
		t.Fatalf("port1 mismatch: %+v", sn.Ports[1])
	}
	if sn.Ports[3].GadgetID != GadgetMediumMotor || len(sn.Ports[3].Values) != 4 {
		t.Fatalf("port3 mismatch: %+v", sn.Ports[3])
	}
	if sn.Accel != [3]float64{100, 200, 300} {
		t.Fatalf("accel mismatch: %+v", sn.Accel)
	}
}
