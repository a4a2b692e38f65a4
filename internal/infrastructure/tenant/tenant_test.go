package tenant

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/caching/manager"
	"github.com/ParleyLabs/chatdeck-go/internal/infrastructure/caching/types"
	appconfig "github.com/ParleyLabs/chatdeck-go/pkg/config"
)

// writeTenantFixture lays out a registry and one tenant config under a
// temporary home directory.
func writeTenantFixture(t *testing.T, home, tenantID, hash, timezone string) {
	t.Helper()

	cfgDir := filepath.Join(home, "chatdeck-server", "config", tenantID)
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatalf("mkdir config: %v", err)
	}
	cfg := fmt.Sprintf(`{"hash":%q,"status":"active","domains":["*"]`, hash)
	if timezone != "" {
		cfg += fmt.Sprintf(`,"timezone":%q`, timezone)
	}
	cfg += "}"
	if err := os.WriteFile(filepath.Join(cfgDir, "env.json"), []byte(cfg), 0644); err != nil {
		t.Fatalf("write env.json: %v", err)
	}

	regDir := filepath.Join(home, "chatdeck-server", "config", "chatdeck")
	if err := os.MkdirAll(regDir, 0755); err != nil {
		t.Fatalf("mkdir registry: %v", err)
	}
	reg := fmt.Sprintf(`{"tenants":{%q:{"tenantId":%q,"hash":%q,"status":"active","domains":["*"]}}}`,
		tenantID, tenantID, hash)
	if err := os.WriteFile(filepath.Join(regDir, "tenants.json"), []byte(reg), 0644); err != nil {
		t.Fatalf("write tenants.json: %v", err)
	}
}

func TestLazyContextCreatesWarmSchema(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	// The registry ships the tenant already marked active, so startup
	// pre-activation would skip it; the lazy path must still migrate.
	writeTenantFixture(t, home, "t1", "abcd1234", "")

	m := NewManager(nil, nil)
	ctx, err := m.GetContextByID("t1")
	if err != nil {
		t.Fatalf("GetContextByID: %v", err)
	}

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rec, err := ctx.DailyAggregateRepo().Get(context.Background(), "t1", day.Format("2006-01-02"))
	if err != nil {
		t.Fatalf("warm read after lazy activation: %v", err)
	}
	if rec != nil {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestStaleContextReloadsTenantConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeTenantFixture(t, home, "t1", "abcd1234", "")

	m := NewManager(nil, nil)
	ctx1, err := m.GetContextByID("t1")
	if err != nil {
		t.Fatalf("GetContextByID: %v", err)
	}
	if ctx1.TimezoneConfigured {
		t.Fatal("fixture starts without a timezone")
	}

	// Edit the tenant config, then age the cached context past the TTL.
	writeTenantFixture(t, home, "t1", "abcd1234", "America/New_York")
	ctx1.LoadedAt = time.Now().Add(-appconfig.TenantConfigTTL - time.Minute)

	ctx2, err := m.GetContextByID("t1")
	if err != nil {
		t.Fatalf("GetContextByID after edit: %v", err)
	}
	if ctx2.TimezoneName() != "America/New_York" || !ctx2.TimezoneConfigured {
		t.Errorf("timezone = %s (configured=%v), want America/New_York after TTL expiry",
			ctx2.TimezoneName(), ctx2.TimezoneConfigured)
	}

	// A fresh context is returned as-is, without a reload.
	ctx3, err := m.GetContextByID("t1")
	if err != nil {
		t.Fatalf("GetContextByID fresh: %v", err)
	}
	if ctx3 != ctx2 {
		t.Error("fresh context was rebuilt")
	}
}

func TestResolveHashUsesSnapshotCache(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cacheManager := manager.NewManager(nil, nil)
	m := NewManager(nil, cacheManager)

	if _, ok := m.resolveHash("zz99"); ok {
		t.Fatal("unknown hash resolved")
	}

	cacheManager.SetTenantSnapshot(&types.TenantSnapshot{TenantID: "t1", Hash: "zz99"})
	id, ok := m.resolveHash("zz99")
	if !ok || id != "t1" {
		t.Errorf("resolveHash = %q/%v, want t1 from the snapshot cache", id, ok)
	}
}

func TestContextFreshness(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	m := NewManager(nil, nil)
	if !m.contextFresh(&Context{LoadedAt: time.Now()}) {
		t.Error("new context reported stale")
	}
	aged := &Context{LoadedAt: time.Now().Add(-appconfig.TenantConfigTTL - time.Minute)}
	if m.contextFresh(aged) {
		t.Error("aged context reported fresh")
	}
}
