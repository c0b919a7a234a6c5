package clustering

import "testing"

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig should validate, got %v", err)
	}
}

func TestConfigValidateRejectsBadFields(t *testing.T) {
	base := DefaultConfig()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"hops zero", func(c *Config) { c.Hops = 0 }},
		{"standoff zero", func(c *Config) { c.StandoffTime = 0 }},
		{"wait negative", func(c *Config) { c.WaitTime = -1 }},
		{"wait exceeds standoff", func(c *Config) { c.WaitTime = c.StandoffTime + 1 }},
		{"profile delay zero", func(c *Config) { c.ProfileDelay = 0 }},
		{"hello timeout zero", func(c *Config) { c.HelloMessageTimeout = 0 }},
		{"table scan zero", func(c *Config) { c.TableScanTimeout = 0 }},
		{"valid entry zero", func(c *Config) { c.ValidEntryTimeout = 0 }},
		{"resign threshold negative", func(c *Config) { c.ResignThreshold = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base
			tc.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}
