package logger

import "testing"

func TestFieldConstructors(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		key   string
		value interface{}
	}{
		{"string", String("pair", "BTC_USDT"), "pair", "BTC_USDT"},
		{"int", Int("bars", 250), "bars", 250},
		{"float64", Float64("score", 62.95), "score", 62.95},
		{"bool true", Bool("emitted", true), "emitted", true},
		{"bool false", Bool("emitted", false), "emitted", false},
		{"strings", Strings("timeframes", []string{"1h", "4h"}), "timeframes", "1h, 4h"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, v := tt.field.GetKeyValue()
			if k != tt.key {
				t.Fatalf("key = %q, want %q", k, tt.key)
			}
			if v != tt.value {
				t.Fatalf("value = %v, want %v", v, tt.value)
			}
		})
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(&Config{Level: "verbose", Format: "json", Output: "stderr"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
