package server

import "testing"

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Port)
	}
	if cfg.ReadTimeout != 15 || cfg.WriteTimeout != 15 || cfg.IdleTimeout != 60 {
		t.Errorf("timeouts = %d/%d/%d", cfg.ReadTimeout, cfg.WriteTimeout, cfg.IdleTimeout)
	}
}

func TestConfigApplyDefaultsKeepsSetValues(t *testing.T) {
	cfg := Config{Port: 8888, ReadTimeout: 30}
	cfg.ApplyDefaults()
	if cfg.Port != 8888 || cfg.ReadTimeout != 30 {
		t.Errorf("defaults overwrote set values: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		cfg     Config
		wantErr bool
	}{
		{Config{Port: 8080, ReadTimeout: 15, WriteTimeout: 15, IdleTimeout: 60}, false},
		{Config{Port: -1}, true},
		{Config{Port: 70000}, true},
		{Config{Port: 8080, ReadTimeout: -1}, true},
		{Config{Port: 8080, WriteTimeout: -1}, true},
		{Config{Port: 8080, IdleTimeout: -1}, true},
	}
	for _, tc := range tests {
		err := tc.cfg.Validate()
		if (err != nil) != tc.wantErr {
			t.Errorf("Validate(%+v) error = %v, wantErr %v", tc.cfg, err, tc.wantErr)
		}
	}
}
