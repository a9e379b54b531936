package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DISPATCH_BATCH_SIZE", "")
	t.Setenv("SCHEDULER_INTERVAL", "")
	t.Setenv("PUSH_PROVIDER", "")

	cfg := Load()

	if cfg.DispatchBatchSize != 50 {
		t.Errorf("DispatchBatchSize = %d, want 50", cfg.DispatchBatchSize)
	}
	if cfg.SchedulerInterval != 0 {
		t.Errorf("SchedulerInterval = %v, want 0", cfg.SchedulerInterval)
	}
	if cfg.PushProvider != "fcm" {
		t.Errorf("PushProvider = %q, want fcm", cfg.PushProvider)
	}
	if cfg.SubscribeRateWindow != time.Hour {
		t.Errorf("SubscribeRateWindow = %v, want 1h", cfg.SubscribeRateWindow)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DISPATCH_BATCH_SIZE", "10")
	t.Setenv("SCHEDULER_INTERVAL", "30s")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()

	if cfg.DispatchBatchSize != 10 {
		t.Errorf("DispatchBatchSize = %d, want 10", cfg.DispatchBatchSize)
	}
	if cfg.SchedulerInterval != 30*time.Second {
		t.Errorf("SchedulerInterval = %v, want 30s", cfg.SchedulerInterval)
	}
	if cfg.RedisDB != 0 {
		t.Errorf("RedisDB = %d, want fallback 0", cfg.RedisDB)
	}
}
