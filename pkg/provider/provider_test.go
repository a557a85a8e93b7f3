package provider_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/polocloud/polocloud/pkg/entity"
	"github.com/polocloud/polocloud/pkg/events"
	"github.com/polocloud/polocloud/pkg/fault"
	"github.com/polocloud/polocloud/pkg/properties"
	"github.com/polocloud/polocloud/pkg/provider"
	"github.com/polocloud/polocloud/pkg/stores"
	"github.com/polocloud/polocloud/pkg/telemetry"
)

func identity(s string) string { return s }

// recorder collects the kinds of every event published on a sync bus.
type recorder struct {
	mu    sync.Mutex
	kinds []events.Kind
	all   []events.Event
}

func (r *recorder) add(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, e.Kind())
	r.all = append(r.all, e)
}

func (r *recorder) snapshot() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Kind(nil), r.kinds...)
}

func record[T events.Event](t *testing.T, bus *events.Bus, r *recorder) {
	t.Helper()
	if _, err := events.Subscribe(bus, func(e T) { r.add(e) }); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
}

func newBus(t *testing.T) *events.Bus {
	t.Helper()
	bus := events.NewBus(events.Config{Mode: events.ModeSync}, telemetry.Nop())
	t.Cleanup(func() { _ = bus.Close(context.Background()) })
	return bus
}

func newGroup(t *testing.T, name string, maxMemory int32) *entity.Group {
	t.Helper()
	g, err := entity.NewGroup(entity.GroupSpec{
		Name:             name,
		MinMemory:        256,
		MaxMemory:        maxMemory,
		MaxOnlineService: 4,
		Platform:         entity.PlatformIndex{Name: "paper", Version: "1.21.4"},
		CreatedAt:        1_700_000_000_000,
		Templates:        []entity.Template{entity.NewTemplate("every", "")},
	})
	if err != nil {
		t.Fatalf("NewGroup() error = %v", err)
	}
	return g
}

func newPlayer(t *testing.T, name string) *entity.Player {
	t.Helper()
	p, err := entity.NewPlayer(name, uuid.New(), "lobby-1", "proxy-1")
	if err != nil {
		t.Fatalf("NewPlayer() error = %v", err)
	}
	return p
}

func TestGroupProviderCRUD(t *testing.T) {
	bus := newBus(t)
	rec := &recorder{}
	record[events.GroupCreateEvent](t, bus, rec)
	record[events.GroupUpdateEvent](t, bus, rec)
	record[events.GroupDeleteEvent](t, bus, rec)

	groups := provider.NewGroupProvider(stores.NewMemoryStore[string, *entity.Group]("group", identity), bus, telemetry.NewTestTelemetry())
	ctx := context.Background()

	lobby := newGroup(t, "lobby", 1024)
	got, err := groups.Create(ctx, lobby)
	if err != nil || got != lobby {
		t.Fatalf("Create() = %v, %v", got, err)
	}

	// A second create of the same key is absent and silent.
	got, err = groups.Create(ctx, newGroup(t, "lobby", 2048))
	if err != nil || got != nil {
		t.Fatalf("Create() duplicate = %v, %v, want nil, nil", got, err)
	}

	found, err := groups.Find(ctx, "lobby")
	if err != nil || found.MaxMemory() != 1024 {
		t.Fatalf("Find() = %v, %v", found, err)
	}
	missing, err := groups.Find(ctx, "bedwars")
	if err != nil || missing != nil {
		t.Fatalf("Find() missing = %v, %v, want nil, nil", missing, err)
	}

	bigger := newGroup(t, "lobby", 4096)
	if got, err := groups.Update(ctx, bigger); err != nil || got != bigger {
		t.Fatalf("Update() = %v, %v", got, err)
	}
	if got, err := groups.Update(ctx, newGroup(t, "bedwars", 1024)); err != nil || got != nil {
		t.Fatalf("Update() missing = %v, %v, want nil, nil", got, err)
	}

	all, err := groups.FindAll(ctx)
	if err != nil || len(all) != 1 || all[0].MaxMemory() != 4096 {
		t.Fatalf("FindAll() = %v, %v", all, err)
	}

	removed, err := groups.Delete(ctx, "lobby")
	if err != nil || removed != bigger {
		t.Fatalf("Delete() = %v, %v", removed, err)
	}
	if removed, err := groups.Delete(ctx, "lobby"); err != nil || removed != nil {
		t.Fatalf("Delete() missing = %v, %v, want nil, nil", removed, err)
	}

	want := []events.Kind{events.KindGroupCreate, events.KindGroupUpdate, events.KindGroupDelete}
	if got := rec.snapshot(); !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestNilEntityIsInvalid(t *testing.T) {
	groups := provider.NewGroupProvider(stores.NewMemoryStore[string, *entity.Group]("group", identity), nil, nil)
	ctx := context.Background()

	if _, err := groups.Create(ctx, nil); !fault.IsInvalid(err) {
		t.Errorf("Create(nil) error = %v, want invalid", err)
	}
	if _, err := groups.Update(ctx, nil); !fault.IsInvalid(err) {
		t.Errorf("Update(nil) error = %v, want invalid", err)
	}
	if got, err := groups.DeleteEntity(ctx, nil); err != nil || got != nil {
		t.Errorf("DeleteEntity(nil) = %v, %v, want nil, nil", got, err)
	}
}

// failingStore fails every call.
type failingStore struct{}

var errDisk = errors.New("disk on fire")

func (failingStore) Get(context.Context, string) (*entity.Group, error) { return nil, errDisk }
func (failingStore) List(context.Context) ([]*entity.Group, error)     { return nil, errDisk }
func (failingStore) Insert(context.Context, string, *entity.Group) error {
	return errDisk
}
func (failingStore) Replace(context.Context, string, *entity.Group) error {
	return errDisk
}
func (failingStore) Remove(context.Context, string) (*entity.Group, error) { return nil, errDisk }
func (failingStore) Len(context.Context) (int, error)                     { return 0, errDisk }

func TestStoreFailuresPropagate(t *testing.T) {
	bus := newBus(t)
	rec := &recorder{}
	record[events.GroupCreateEvent](t, bus, rec)

	groups := provider.NewGroupProvider(failingStore{}, bus, nil)
	ctx := context.Background()

	if _, err := groups.Find(ctx, "lobby"); !errors.Is(err, errDisk) {
		t.Errorf("Find() error = %v, want %v", err, errDisk)
	}
	if _, err := groups.FindAll(ctx); !errors.Is(err, errDisk) {
		t.Errorf("FindAll() error = %v, want %v", err, errDisk)
	}
	if _, err := groups.Create(ctx, newGroup(t, "lobby", 1024)); !errors.Is(err, errDisk) {
		t.Errorf("Create() error = %v, want %v", err, errDisk)
	}
	if _, err := groups.Delete(ctx, "lobby"); !errors.Is(err, errDisk) {
		t.Errorf("Delete() error = %v, want %v", err, errDisk)
	}
	if got := rec.snapshot(); len(got) != 0 {
		t.Errorf("failed mutations published %v", got)
	}
}

func TestAsyncTwins(t *testing.T) {
	groups := provider.NewGroupProvider(stores.NewMemoryStore[string, *entity.Group]("group", identity), nil, nil)
	ctx := context.Background()

	lobby := newGroup(t, "lobby", 1024)
	if got, err := groups.CreateAsync(ctx, lobby).Await(ctx); err != nil || got != lobby {
		t.Fatalf("CreateAsync() = %v, %v", got, err)
	}
	if got, err := groups.FindAsync(ctx, "lobby").Await(ctx); err != nil || got != lobby {
		t.Fatalf("FindAsync() = %v, %v", got, err)
	}
	if got, err := groups.FindAllAsync(ctx).Await(ctx); err != nil || len(got) != 1 {
		t.Fatalf("FindAllAsync() = %v, %v", got, err)
	}
	bigger := newGroup(t, "lobby", 2048)
	if got, err := groups.UpdateAsync(ctx, bigger).Await(ctx); err != nil || got != bigger {
		t.Fatalf("UpdateAsync() = %v, %v", got, err)
	}
	if got, err := groups.DeleteEntityAsync(ctx, bigger).Await(ctx); err != nil || got != bigger {
		t.Fatalf("DeleteEntityAsync() = %v, %v", got, err)
	}
	if got, err := groups.DeleteAsync(ctx, "lobby").Await(ctx); err != nil || got != nil {
		t.Fatalf("DeleteAsync() = %v, %v, want nil, nil", got, err)
	}
}

func TestConcurrentCreateHasOneWinner(t *testing.T) {
	bus := newBus(t)
	rec := &recorder{}
	record[events.GroupCreateEvent](t, bus, rec)

	groups := provider.NewGroupProvider(stores.NewMemoryStore[string, *entity.Group]("group", identity), bus, nil)
	ctx := context.Background()

	candidates := make([]*entity.Group, 20)
	for i := range candidates {
		candidates[i] = newGroup(t, "lobby", 1024)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for _, g := range candidates {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := groups.Create(ctx, g)
			if err != nil {
				t.Errorf("Create() error = %v", err)
				return
			}
			if got != nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("%d creates succeeded, want 1", wins)
	}
	if got := rec.snapshot(); len(got) != 1 {
		t.Errorf("published %d create events, want 1", len(got))
	}
}

func TestConcurrentUpdatesStoreOneWholePayload(t *testing.T) {
	bus := newBus(t)
	rec := &recorder{}
	record[events.GroupUpdateEvent](t, bus, rec)

	groups := provider.NewGroupProvider(stores.NewMemoryStore[string, *entity.Group]("group", identity), bus, nil)
	ctx := context.Background()
	if _, err := groups.Create(ctx, newGroup(t, "lobby", 1024)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Every candidate differs from the others in every mutable field.
	candidates := make([]*entity.Group, 16)
	for i := range candidates {
		n := int32(i + 1)
		g, err := entity.NewGroup(entity.GroupSpec{
			Name:             "lobby",
			MinMemory:        256 * n,
			MaxMemory:        512 * n,
			MinOnlineService: n,
			MaxOnlineService: 2 * n,
			Platform:         entity.PlatformIndex{Name: "paper", Version: fmt.Sprintf("1.21.%d", n)},
			StartThreshold:   float64(n) / 32,
			CreatedAt:        1_700_000_000_000,
			Templates:        []entity.Template{entity.NewTemplate(fmt.Sprintf("t%d", n), "")},
			Properties:       properties.New().Set("writer", properties.Int(n)),
		})
		if err != nil {
			t.Fatalf("NewGroup() error = %v", err)
		}
		candidates[i] = g
	}

	var wg sync.WaitGroup
	for _, g := range candidates {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := groups.Update(ctx, g)
			if err != nil || got != g {
				t.Errorf("Update() = %v, %v", got, err)
			}
		}()
	}
	wg.Wait()

	stored, err := groups.Find(ctx, "lobby")
	if err != nil || stored == nil {
		t.Fatalf("Find() = %v, %v", stored, err)
	}
	if !slices.ContainsFunc(candidates, stored.Equal) {
		t.Errorf("stored group %v matches no single update", stored)
	}
	if got := rec.snapshot(); len(got) != len(candidates) {
		t.Errorf("published %d update events, want %d", len(got), len(candidates))
	}
}

func TestCreateStampsCreationTime(t *testing.T) {
	groups := provider.NewGroupProvider(stores.NewMemoryStore[string, *entity.Group]("group", identity), nil, nil)
	ctx := context.Background()

	spec := newGroup(t, "lobby", 1024).Spec()
	spec.CreatedAt = 0
	fresh, err := entity.NewGroup(spec)
	if err != nil {
		t.Fatalf("NewGroup() error = %v", err)
	}
	if fresh.CreatedAt() != 0 {
		t.Fatalf("NewGroup() stamped %d, want 0", fresh.CreatedAt())
	}

	before := time.Now().UnixMilli()
	created, err := groups.Create(ctx, fresh)
	if err != nil || created == nil {
		t.Fatalf("Create() = %v, %v", created, err)
	}
	if created.CreatedAt() < before {
		t.Errorf("CreatedAt() = %d, want at least %d", created.CreatedAt(), before)
	}
	stored, _ := groups.Find(ctx, "lobby")
	if stored == nil || stored.CreatedAt() != created.CreatedAt() {
		t.Errorf("stored group %v does not carry the stamped time", stored)
	}

	// An existing creation time is kept.
	kept := newGroup(t, "bedwars", 1024)
	if got, _ := groups.Create(ctx, kept); got != kept {
		t.Errorf("Create() = %v, want the group unchanged", got)
	}
}

func TestPlayerProvider(t *testing.T) {
	bus := newBus(t)
	rec := &recorder{}
	record[events.PlayerJoinEvent](t, bus, rec)
	record[events.PlayerUpdateEvent](t, bus, rec)
	record[events.PlayerLeaveEvent](t, bus, rec)

	players := provider.NewPlayerProvider(stores.NewMemoryStore[uuid.UUID, *entity.Player]("player", uuid.UUID.String), bus, nil)
	ctx := context.Background()

	steve := newPlayer(t, "Steve")
	if _, err := players.Create(ctx, steve); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := players.Create(ctx, newPlayer(t, "Alex")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := players.FindByName(ctx, "steve")
	if err != nil || got != steve {
		t.Fatalf("FindByName() = %v, %v", got, err)
	}
	if got, err := players.FindByNameAsync(ctx, "herobrine").Await(ctx); err != nil || got != nil {
		t.Fatalf("FindByNameAsync() missing = %v, %v, want nil, nil", got, err)
	}

	moved := steve.WithServer("bedwars-1")
	if _, err := players.Update(ctx, moved); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if _, err := players.DeleteEntity(ctx, moved); err != nil {
		t.Fatalf("DeleteEntity() error = %v", err)
	}

	want := []events.Kind{events.KindPlayerJoin, events.KindPlayerJoin, events.KindPlayerUpdate, events.KindPlayerLeave}
	if got := rec.snapshot(); !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestTemplateProvider(t *testing.T) {
	bus := newBus(t)
	rec := &recorder{}
	record[events.TemplateCreateEvent](t, bus, rec)
	record[events.TemplateDeleteEvent](t, bus, rec)

	templates := provider.NewTemplateProvider(stores.NewMemoryStore[string, entity.Template]("template", identity), bus, nil)
	ctx := context.Background()

	every := entity.NewTemplate("every", "1.0 KB")
	if _, err := templates.Create(ctx, every); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := templates.Update(ctx, entity.NewTemplate("every", "2.0 KB")); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err := templates.Find(ctx, "every")
	if err != nil || got.Size() != "2.0 KB" {
		t.Fatalf("Find() = %v, %v", got, err)
	}
	if _, err := templates.Delete(ctx, "every"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	want := []events.Kind{events.KindTemplateCreate, events.KindTemplateDelete}
	if got := rec.snapshot(); !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}
