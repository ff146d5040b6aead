package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefaultsDecode(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := decode(v)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if cfg.Security.LoginRateLimit.MaxAttempts != 5 || cfg.Security.LoginRateLimit.WindowSeconds != 60 {
		t.Fatalf("unexpected login rate limit: %+v", cfg.Security.LoginRateLimit)
	}
	if cfg.Shipment.DefaultItemWeight != 0.5 {
		t.Fatalf("unexpected default item weight: %v", cfg.Shipment.DefaultItemWeight)
	}
	if cfg.Shipment.DefaultCourier != "JNE" || cfg.Shipment.DefaultService != "REG" {
		t.Fatalf("unexpected courier defaults: %+v", cfg.Shipment)
	}
	if !cfg.Shipment.EnforceEligibility || !cfg.Shipment.SingleActivePerOrder {
		t.Fatalf("expected shipment guards enabled by default")
	}
	if cfg.Stats.CacheTTL() != 45*time.Second {
		t.Fatalf("unexpected stats ttl: %v", cfg.Stats.CacheTTL())
	}
}

func TestDecodeRestoresNonPositiveItemWeight(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("shipment.default_item_weight", 0)

	cfg, err := decode(v)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if cfg.Shipment.DefaultItemWeight != 0.5 {
		t.Fatalf("expected fallback weight 0.5, got %v", cfg.Shipment.DefaultItemWeight)
	}
}

func TestAppLocationFallback(t *testing.T) {
	if got := (AppConfig{Timezone: "Not/AZone"}).Location(); got != time.UTC {
		t.Fatalf("expected UTC fallback, got %v", got)
	}
	if got := (AppConfig{}).Location(); got != time.UTC {
		t.Fatalf("expected UTC for empty timezone, got %v", got)
	}
}
