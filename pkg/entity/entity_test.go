package entity

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/polocloud/polocloud/pkg/fault"
	"github.com/polocloud/polocloud/pkg/properties"
)

func lobbySpec() GroupSpec {
	return GroupSpec{
		Name:             "lobby",
		MinMemory:        512,
		MaxMemory:        1024,
		MinOnlineService: 1,
		MaxOnlineService: 4,
		Platform:         PlatformIndex{Name: "paper", Version: "1.21.4"},
		StartThreshold:   0.75,
		CreatedAt:        1700000000000,
		Templates:        []Template{NewTemplate("every", ""), NewTemplate("lobby", "2.0 MB")},
		Properties:       properties.New().Set("maintenance", properties.Bool(false)),
	}
}

func TestNewGroupInvariants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GroupSpec)
	}{
		{"empty name", func(s *GroupSpec) { s.Name = "" }},
		{"min memory above max", func(s *GroupSpec) { s.MinMemory = 2048 }},
		{"min online above max", func(s *GroupSpec) { s.MinOnlineService = 5 }},
		{"threshold above one", func(s *GroupSpec) { s.StartThreshold = 1.5 }},
		{"negative threshold", func(s *GroupSpec) { s.StartThreshold = -0.1 }},
		{"missing platform version", func(s *GroupSpec) { s.Platform.Version = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := lobbySpec()
			tt.mutate(&spec)
			if _, err := NewGroup(spec); !fault.IsInvalid(err) {
				t.Errorf("expected invalid error, got %v", err)
			}
		})
	}

	g, err := NewGroup(lobbySpec())
	if err != nil {
		t.Fatalf("NewGroup failed: %v", err)
	}
	if g.Templates()[0].Size() != DefaultTemplateSize {
		t.Errorf("expected default template size, got %q", g.Templates()[0].Size())
	}
}

func TestGroupPatchReturnsNewValue(t *testing.T) {
	g, err := NewGroup(lobbySpec())
	if err != nil {
		t.Fatal(err)
	}

	maxMem := int32(2048)
	patched, err := g.Patch(GroupPatch{MaxMemory: &maxMem})
	if err != nil {
		t.Fatalf("Patch failed: %v", err)
	}
	if g.MaxMemory() != 1024 {
		t.Error("original group was modified")
	}
	if patched.MaxMemory() != 2048 || patched.Name() != "lobby" || patched.CreatedAt() != g.CreatedAt() {
		t.Errorf("unexpected patched group %v", patched)
	}

	minMem := int32(4096)
	if _, err := g.Patch(GroupPatch{MinMemory: &minMem}); !fault.IsInvalid(err) {
		t.Errorf("expected invalid patch, got %v", err)
	}
}

func TestGroupPropertiesAreCopied(t *testing.T) {
	g, _ := NewGroup(lobbySpec())
	props := g.Properties()
	props.Set("maintenance", properties.Bool(true))
	if b, _ := g.Properties().Bool("maintenance"); b {
		t.Error("mutating returned properties changed the group")
	}
}

func TestGroupEqual(t *testing.T) {
	a, _ := NewGroup(lobbySpec())
	b, _ := NewGroup(lobbySpec())
	if !a.Equal(b) {
		t.Error("expected equal groups")
	}
	spec := lobbySpec()
	spec.Templates = []Template{NewTemplate("every", "9.9 GB"), NewTemplate("lobby", "")}
	c, _ := NewGroup(spec)
	if !a.Equal(c) {
		t.Error("templates should compare by name only")
	}
	spec.Properties = properties.New().Set("maintenance", properties.String("false"))
	d, _ := NewGroup(spec)
	if a.Equal(d) {
		t.Error("expected differently typed property to break equality")
	}
}

func lobbyService(t *testing.T) *Service {
	t.Helper()
	s, err := NewService(ServiceSpec{
		GroupName: "lobby",
		ID:        3,
		State:     ServiceStateOnline,
		Type:      GroupTypeServer,
		Hostname:  "10.0.0.5",
		Port:      30000,
		MinMemory: 512,
		MaxMemory: 1024,
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return s
}

func TestServiceNameAndDefaults(t *testing.T) {
	s := lobbyService(t)
	if s.Name() != "lobby-3" {
		t.Errorf("expected lobby-3, got %s", s.Name())
	}
	if s.PlayerCount() != Unknown || s.CPUUsage() != Unknown || s.Motd() != "" {
		t.Errorf("expected unknown metrics, got %+v", s.Metrics())
	}
	if s.Information().CreatedAt != 0 {
		t.Errorf("expected an unstamped creation time, got %d", s.Information().CreatedAt)
	}

	now := time.UnixMilli(1_700_000_000_000)
	stamped := s.Stamped(now)
	if stamped.Information().CreatedAt != now.UnixMilli() {
		t.Errorf("Stamped set %d, want %d", stamped.Information().CreatedAt, now.UnixMilli())
	}
	if again := stamped.Stamped(now.Add(time.Hour)); again != stamped {
		t.Error("Stamped must keep an existing creation time")
	}
	if s.Information().CreatedAt != 0 {
		t.Error("Stamped modified the original service")
	}
}

func TestServiceEqualityIgnoresMetrics(t *testing.T) {
	s := lobbyService(t)
	hot := s.WithMetrics(ServiceMetrics{PlayerCount: 12, MaxPlayerCount: 50, MemoryUsage: 700, CPUUsage: 35})
	if !s.Equal(hot) {
		t.Error("metrics should not affect equality")
	}
	if s.Identical(hot) {
		t.Error("expected Identical to see metrics")
	}
	if s.Equal(s.WithState(ServiceStateStopping)) {
		t.Error("state should affect equality")
	}
	if s.Equal(s.WithEndpoint("10.0.0.6", 30000)) {
		t.Error("hostname should affect equality")
	}
	if s.Equal(s.WithProperty("mode", "ranked")) {
		t.Error("properties should affect equality")
	}
	if s.PlayerCount() != Unknown {
		t.Error("With* modified the receiver")
	}
}

func TestServiceStateTransitionsAreUnconstrained(t *testing.T) {
	s := lobbyService(t)
	back := s.WithState(ServiceStateStopped).WithState(ServiceStatePreparing)
	if back.State() != ServiceStatePreparing {
		t.Errorf("expected PREPARING, got %s", back.State())
	}
}

func TestNewServiceRejectsUnknownState(t *testing.T) {
	_, err := NewService(ServiceSpec{GroupName: "lobby", ID: 1, State: "CRASHED", Type: GroupTypeServer})
	if !fault.IsInvalid(err) {
		t.Errorf("expected invalid error, got %v", err)
	}
}

func TestNewPlayer(t *testing.T) {
	id := uuid.New()
	p, err := NewPlayer("Steve", id, "lobby-1", "proxy-1")
	if err != nil {
		t.Fatalf("NewPlayer failed: %v", err)
	}
	moved := p.WithServer("bedwars-2")
	if p.CurrentServerName() != "lobby-1" || moved.CurrentServerName() != "bedwars-2" {
		t.Error("WithServer should return an independent copy")
	}
	if moved.UniqueID() != id {
		t.Error("identity must survive transfer")
	}
	if _, err := NewPlayer("Steve", uuid.Nil, "", ""); !fault.IsInvalid(err) {
		t.Errorf("expected invalid error for nil uuid, got %v", err)
	}
}

func TestHumanReadableSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "empty"},
		{-5, "empty"},
		{512, "512.0 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 << 40, "3.0 TB"},
		{2048 << 40, "2048.0 TB"},
	}
	for _, tt := range tests {
		if got := HumanReadableSize(tt.bytes); got != tt.want {
			t.Errorf("HumanReadableSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestDirectoryTemplate(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "server.properties"), make([]byte, 2048), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "plugins"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "plugins", "a.jar"), make([]byte, 1024), 0o644); err != nil {
		t.Fatal(err)
	}

	tpl := NewDirectoryTemplate("lobby", dir)
	if got := tpl.Size(); got != "3.0 KB" {
		t.Errorf("expected 3.0 KB, got %q", got)
	}
	missing := NewDirectoryTemplate("gone", filepath.Join(dir, "missing"))
	if got := missing.Size(); got != DefaultTemplateSize {
		t.Errorf("expected %q for missing dir, got %q", DefaultTemplateSize, got)
	}
	if !SameTemplate(tpl, NewTemplate("lobby", "1.0 KB")) {
		t.Error("templates with the same name should match")
	}
}

func TestPlatformIndex(t *testing.T) {
	p, err := NewPlatform("paper", GroupTypeServer, PlatformVersion{Version: "1.20.6"}, PlatformVersion{Version: "1.21.4"})
	if err != nil {
		t.Fatalf("NewPlatform failed: %v", err)
	}
	idx, ok := p.Index("1.21.4")
	if !ok || idx.String() != "paper-1.21.4" {
		t.Errorf("unexpected index %v %v", idx, ok)
	}
	if _, ok := p.Index("1.8"); ok {
		t.Error("expected unknown version to be absent")
	}
	if _, err := NewPlatform("paper", "LOBBY"); !fault.IsInvalid(err) {
		t.Errorf("expected invalid platform type, got %v", err)
	}
}

func TestBootConfigurationResolve(t *testing.T) {
	g, _ := NewGroup(lobbySpec())
	cfg := NewBootConfiguration(
		WithMaxMemory(2048),
		WithoutTemplate("every"),
		WithTemplate("event"),
		WithTemplate("lobby"),
		WithProperty("mode", "event"),
	)

	spec := cfg.Resolve(g, GroupTypeServer, 7)
	if spec.MinMemory != 512 || spec.MaxMemory != 2048 {
		t.Errorf("unexpected memory %d-%d", spec.MinMemory, spec.MaxMemory)
	}
	names := TemplateNames(spec.Templates)
	if len(names) != 2 || names[0] != "lobby" || names[1] != "event" {
		t.Errorf("unexpected templates %v", names)
	}
	s, err := NewService(spec)
	if err != nil {
		t.Fatalf("resolved spec is invalid: %v", err)
	}
	if s.Name() != "lobby-7" || s.State() != ServiceStatePreparing {
		t.Errorf("unexpected service %v", s)
	}
	if v, _ := s.Property("mode"); v != "event" {
		t.Errorf("expected mode=event, got %q", v)
	}
}

func TestAggregate(t *testing.T) {
	agg := Aggregate([]CloudInformation{
		{CPUUsage: 10, UsedMemory: 1000, Timestamp: 1},
		{CPUUsage: 30, UsedMemory: 3000, Timestamp: 5},
	})
	if agg.AvgCPU != 20 || agg.AvgRAM != 2000 || agg.Timestamp != 5 {
		t.Errorf("unexpected aggregate %+v", agg)
	}
}
