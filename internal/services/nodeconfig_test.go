package services

import (
	"errors"
	"testing"

	"github.com/soochol/flowboard/internal/flow"
)

func TestCheckNodeConfig(t *testing.T) {
	tests := []struct {
		name       string
		kind       flow.NodeKind
		cfg        map[string]any
		configured bool
		invalid    bool
	}{
		{"trigger empty", flow.NodeKindTrigger, nil, false, false},
		{"trigger 5-field schedule", flow.NodeKindTrigger, map[string]any{"schedule": "0 9 * * 1-5"}, true, false},
		{"trigger 6-field schedule", flow.NodeKindTrigger, map[string]any{"schedule": "30 0 9 * * *"}, true, false},
		{"trigger descriptor", flow.NodeKindTrigger, map[string]any{"schedule": "@every 5m"}, true, false},
		{"trigger utc timezone", flow.NodeKindTrigger, map[string]any{"schedule": "0 9 * * *", "timezone": "UTC"}, true, false},
		{"trigger bad schedule", flow.NodeKindTrigger, map[string]any{"schedule": "every day"}, false, true},
		{"trigger event", flow.NodeKindTrigger, map[string]any{"event": "user.signup"}, true, false},
		{"trigger non-string event", flow.NodeKindTrigger, map[string]any{"event": 3}, false, true},
		{"action missing", flow.NodeKindAction, map[string]any{}, false, false},
		{"action set", flow.NodeKindAction, map[string]any{"action": "send_email"}, true, false},
		{"condition missing", flow.NodeKindCondition, nil, false, false},
		{"condition ok", flow.NodeKindCondition, map[string]any{"expression": "amount > 100"}, true, false},
		{"condition syntax error", flow.NodeKindCondition, map[string]any{"expression": "amount >"}, false, true},
		{"condition not boolean", flow.NodeKindCondition, map[string]any{"expression": "1 + 2"}, false, true},
		{"delay missing", flow.NodeKindDelay, nil, false, false},
		{"delay string", flow.NodeKindDelay, map[string]any{"duration": "15m"}, true, false},
		{"delay seconds", flow.NodeKindDelay, map[string]any{"duration": 30}, true, false},
		{"delay float seconds", flow.NodeKindDelay, map[string]any{"duration": 1.5}, true, false},
		{"delay zero", flow.NodeKindDelay, map[string]any{"duration": "0s"}, false, true},
		{"delay negative", flow.NodeKindDelay, map[string]any{"duration": -5}, false, true},
		{"delay garbage", flow.NodeKindDelay, map[string]any{"duration": "soon"}, false, true},
		{"delay wrong type", flow.NodeKindDelay, map[string]any{"duration": true}, false, true},
		{"unknown kind", flow.NodeKind("webhook"), nil, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configured, err := CheckNodeConfig(tt.kind, tt.cfg)
			if tt.invalid {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("err = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if configured != tt.configured {
				t.Errorf("configured = %v, want %v", configured, tt.configured)
			}
		})
	}
}
