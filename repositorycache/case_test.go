package repositorycache

import "testing"

func TestToSnake(t *testing.T) {
	tests := map[string]string{
		"":                      "",
		"configuration":         "configuration",
		"GameConfiguration":     "game_configuration",
		"HTTPCache":             "http_cache",
		"game-config v2":        "game_config_v2",
		"Config2Beta":           "config2_beta",
		"*configuration.Record": "configuration_record",
		"__Edge__":              "edge",
		"  ":                    "",
	}

	for in, want := range tests {
		if got := toSnake(in); got != want {
			t.Errorf("toSnake(%q) = %q, want %q", in, got, want)
		}
	}
}
