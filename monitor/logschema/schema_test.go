package logschema

import "testing"

func TestValidate(t *testing.T) {
	err := Validate("trade_admission", map[string]interface{}{
		"symbol":   "ETHUSDC",
		"side":     "buy",
		"approved": true,
		"reason":   "Within exposure limits",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = Validate("trade_admission", map[string]interface{}{
		"symbol": "ETHUSDC",
	})
	if err == nil {
		t.Fatalf("expected error for missing fields")
	}
	if got := err.Error(); got != "missing fields: side,approved,reason" {
		t.Fatalf("unexpected message: %s", got)
	}
	if err := Validate("unknown_event", nil); err != nil {
		t.Fatalf("unknown events should pass: %v", err)
	}
}

func TestKnownEvents(t *testing.T) {
	names := Known()
	if len(names) == 0 {
		t.Fatalf("expected non-empty schema list")
	}
	found := false
	for _, n := range names {
		if n == "risk_evaluation" {
			found = true
		}
	}
	if !found {
		t.Fatalf("risk_evaluation not found in schemas")
	}
}
