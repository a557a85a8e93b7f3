package mapper

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/polocloud/polocloud/pkg/document"
	"github.com/polocloud/polocloud/pkg/entity"
	"github.com/polocloud/polocloud/pkg/fault"
	"github.com/polocloud/polocloud/pkg/properties"
	"github.com/polocloud/polocloud/pkg/wire"
)

func groupSnapshot() wire.GroupSnapshot {
	return wire.GroupSnapshot{
		Name:                        "lobby",
		MinimumMemory:               512,
		MaximumMemory:               1024,
		MinimumOnline:               1,
		MaximumOnline:               4,
		Platform:                    wire.PlatformIndexSnapshot{Name: "paper", Version: "1.21.4"},
		PercentageToStartNewService: 0.75,
		CreatedAt:                   1700000000000,
		Templates:                   []wire.TemplateSnapshot{{Name: "every", Size: "unknown"}, {Name: "lobby", Size: "2.0 MB"}},
		Properties: map[string]string{
			"maintenance": "true",
			"slots":       "42",
			"ratio":       "3.14",
			"motd":        "hello",
		},
	}
}

func serviceSnapshot() wire.ServiceSnapshot {
	return wire.ServiceSnapshot{
		GroupName:      "lobby",
		ID:             3,
		State:          wire.ServiceStateOnline,
		ServerType:     wire.GroupTypeServer,
		Properties:     map[string]string{"mode": "ranked"},
		Hostname:       "10.0.0.5",
		Port:           30000,
		Templates:      []wire.TemplateSnapshot{{Name: "every", Size: "1.0 KB"}},
		Information:    wire.ServiceInformationSnapshot{CreatedAt: 1700000000123},
		MinimumMemory:  512,
		MaximumMemory:  1024,
		MaxPlayerCount: 50,
		PlayerCount:    12,
		MemoryUsage:    700.5,
		CPUUsage:       35.25,
		Motd:           "Welcome",
	}
}

func TestGroupWireRoundTrip(t *testing.T) {
	in := groupSnapshot()
	g, err := GroupFromWire(in)
	if err != nil {
		t.Fatalf("GroupFromWire failed: %v", err)
	}
	if out := GroupToWire(g); !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestWireBytesRoundTripWithoutContainers(t *testing.T) {
	group := groupSnapshot()
	group.Templates = nil
	group.Properties = nil
	group.CreatedAt = 0

	service := serviceSnapshot()
	service.Templates = nil
	service.Properties = nil
	service.Information = wire.ServiceInformationSnapshot{}

	tests := []struct {
		name string
		in   wire.Snapshot
		trip func(data []byte) (wire.Snapshot, error)
	}{
		{
			name: "group",
			in:   group,
			trip: func(data []byte) (wire.Snapshot, error) {
				var s wire.GroupSnapshot
				if err := wire.Unmarshal(data, &s); err != nil {
					return nil, err
				}
				g, err := GroupFromWire(s)
				if err != nil {
					return nil, err
				}
				return GroupToWire(g), nil
			},
		},
		{
			name: "service",
			in:   service,
			trip: func(data []byte) (wire.Snapshot, error) {
				var s wire.ServiceSnapshot
				if err := wire.Unmarshal(data, &s); err != nil {
					return nil, err
				}
				svc, err := ServiceFromWire(s)
				if err != nil {
					return nil, err
				}
				return ServiceToWire(svc), nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := wire.Marshal(tt.in)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			snap, err := tt.trip(in)
			if err != nil {
				t.Fatalf("round trip failed: %v", err)
			}
			out, err := wire.Marshal(snap)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if !bytes.Equal(in, out) {
				inDiag, _ := wire.Diagnose(in)
				outDiag, _ := wire.Diagnose(out)
				t.Errorf("wire bytes changed:\n got %s\nwant %s", outDiag, inDiag)
			}
		})
	}
}

func TestGroupPropertyInference(t *testing.T) {
	g, err := GroupFromWire(groupSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	props := g.Properties()
	tests := []struct {
		key  string
		want properties.Value
	}{
		{"maintenance", properties.Bool(true)},
		{"slots", properties.Int(42)},
		{"ratio", properties.Double(3.14)},
		{"motd", properties.String("hello")},
	}
	for _, tt := range tests {
		got, ok := props.Get(tt.key)
		if !ok || !got.Equal(tt.want) {
			t.Errorf("%s: got %s %v, want %s %v", tt.key, got.Type(), got.Any(), tt.want.Type(), tt.want.Any())
		}
	}
}

func TestGroupDocumentRoundTrip(t *testing.T) {
	spec := entity.GroupSpec{
		Name:             "bedwars",
		MinMemory:        1024,
		MaxMemory:        2048,
		MinOnlineService: 0,
		MaxOnlineService: 10,
		Platform:         entity.PlatformIndex{Name: "paper", Version: "1.21.4"},
		StartThreshold:   0.5,
		CreatedAt:        1700000000000,
		Templates:        []entity.Template{entity.NewTemplate("every", ""), entity.NewTemplate("bedwars", "")},
		Properties: properties.New().
			Set("ranked", properties.Bool(true)).
			Set("teams", properties.Int(8)).
			Set("ratio", properties.Double(2)).
			Set("scale", properties.Float(1.1)).
			Set("label", properties.String("42")),
	}
	g, err := entity.NewGroup(spec)
	if err != nil {
		t.Fatal(err)
	}

	viaWire, err := GroupFromWire(GroupToWire(g))
	if err != nil {
		t.Fatalf("GroupFromWire failed: %v", err)
	}
	if !viaWire.Equal(g) {
		t.Errorf("wire round trip changed group; properties %v", viaWire.Properties().Map())
	}

	direct, err := GroupFromDocument(GroupToDocument(g))
	if err != nil {
		t.Fatalf("GroupFromDocument failed: %v", err)
	}
	if !direct.Equal(g) {
		t.Errorf("in-memory round trip mismatch: %v vs %v", direct, g)
	}

	data, err := document.MarshalJSON(GroupToDocument(g), false)
	if err != nil {
		t.Fatal(err)
	}
	d, err := document.UnmarshalJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	viaJSON, err := GroupFromDocument(d)
	if err != nil {
		t.Fatalf("GroupFromDocument after JSON failed: %v", err)
	}
	if !viaJSON.Equal(g) {
		t.Errorf("JSON round trip changed group; properties %v", viaJSON.Properties().Map())
	}

	yml, err := document.MarshalYAML(GroupToDocument(g))
	if err != nil {
		t.Fatal(err)
	}
	d, err = document.UnmarshalYAML(yml)
	if err != nil {
		t.Fatal(err)
	}
	viaYAML, err := GroupFromDocument(d)
	if err != nil {
		t.Fatalf("GroupFromDocument after YAML failed: %v", err)
	}
	if !viaYAML.Equal(g) {
		t.Errorf("YAML round trip changed group; properties %v", viaYAML.Properties().Map())
	}
}

func TestGroupFromWireMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*wire.GroupSnapshot)
		field  string
	}{
		{"name", func(s *wire.GroupSnapshot) { s.Name = "" }, "name"},
		{"platform name", func(s *wire.GroupSnapshot) { s.Platform.Name = "" }, "platform.name"},
		{"platform version", func(s *wire.GroupSnapshot) { s.Platform.Version = "" }, "platform.version"},
		{"template name", func(s *wire.GroupSnapshot) { s.Templates[0].Name = "" }, "templates.name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := groupSnapshot()
			tt.mutate(&s)
			_, err := GroupFromWire(s)
			var fe *fault.Error
			if !errors.As(err, &fe) || fe.Class != fault.ClassSchemaViolation || fe.Field != tt.field || fe.Entity != "group" {
				t.Errorf("expected schema violation on group.%s, got %v", tt.field, err)
			}
		})
	}
}

func TestGroupFromDocumentMissingMemory(t *testing.T) {
	g, _ := GroupFromWire(groupSnapshot())
	d := GroupToDocument(g)
	delete(d, document.KeyMinMemory)
	_, err := GroupFromDocument(d)
	var fe *fault.Error
	if !errors.As(err, &fe) || fe.Field != document.KeyMinMemory {
		t.Errorf("expected missing minMemory, got %v", err)
	}
}

func TestServiceWireRoundTrip(t *testing.T) {
	in := serviceSnapshot()
	s, err := ServiceFromWire(in)
	if err != nil {
		t.Fatalf("ServiceFromWire failed: %v", err)
	}
	if s.Name() != "lobby-3" {
		t.Errorf("expected lobby-3, got %s", s.Name())
	}
	if out := ServiceToWire(s); !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestServiceDocumentRoundTrip(t *testing.T) {
	s, err := ServiceFromWire(serviceSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	data, err := document.MarshalJSON(ServiceToDocument(s), true)
	if err != nil {
		t.Fatal(err)
	}
	d, err := document.UnmarshalJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	back, err := ServiceFromDocument(d)
	if err != nil {
		t.Fatalf("ServiceFromDocument failed: %v", err)
	}
	if !back.Identical(s) {
		t.Errorf("document round trip mismatch:\n got %v %+v\nwant %v %+v", back, back.Metrics(), s, s.Metrics())
	}
}

func TestServiceFromDocumentRejectsMismatchedName(t *testing.T) {
	s, _ := ServiceFromWire(serviceSnapshot())
	d := ServiceToDocument(s)
	d[document.KeyName] = "lobby-4"
	if _, err := ServiceFromDocument(d); !fault.IsSchemaViolation(err) {
		t.Errorf("expected schema violation, got %v", err)
	}
}

func TestServiceFromWireRejectsUnknownEnums(t *testing.T) {
	s := serviceSnapshot()
	s.State = "CRASHED"
	if _, err := ServiceFromWire(s); !fault.IsSchemaViolation(err) {
		t.Errorf("expected schema violation for state, got %v", err)
	}
	s = serviceSnapshot()
	s.ServerType = ""
	if _, err := ServiceFromWire(s); !fault.IsSchemaViolation(err) {
		t.Errorf("expected schema violation for type, got %v", err)
	}
}

func TestPlayerRoundTrips(t *testing.T) {
	in := wire.PlayerSnapshot{
		Name:              "Steve",
		UniqueID:          "0d1f7a5e-54d4-4c35-8f7e-2f3ad1f7b9a1",
		CurrentServerName: "lobby-1",
		CurrentProxyName:  "proxy-1",
	}
	p, err := PlayerFromWire(in)
	if err != nil {
		t.Fatalf("PlayerFromWire failed: %v", err)
	}
	if out := PlayerToWire(p); out != in {
		t.Errorf("wire round trip mismatch: %+v", out)
	}
	back, err := PlayerFromDocument(PlayerToDocument(p))
	if err != nil || !back.Equal(p) {
		t.Errorf("document round trip mismatch: %v %v", back, err)
	}

	in.UniqueID = "not-a-uuid"
	if _, err := PlayerFromWire(in); !fault.IsSchemaViolation(err) {
		t.Errorf("expected schema violation, got %v", err)
	}
}

func TestPlatformAndTemplateRoundTrips(t *testing.T) {
	ps := wire.PlatformSnapshot{
		Name:     "velocity",
		Type:     wire.GroupTypeProxy,
		Versions: []wire.PlatformVersionSnapshot{{Version: "3.3.0"}, {Version: "3.4.0"}},
	}
	p, err := PlatformFromWire(ps)
	if err != nil {
		t.Fatalf("PlatformFromWire failed: %v", err)
	}
	if out := PlatformToWire(p); !reflect.DeepEqual(out, ps) {
		t.Errorf("platform wire mismatch: %+v", out)
	}
	back, err := PlatformFromDocument(PlatformToDocument(p))
	if err != nil || !back.Equal(p) {
		t.Errorf("platform document mismatch: %v %v", back, err)
	}

	ts := wire.TemplateSnapshot{Name: "every", Size: "3.0 KB"}
	tpl, err := TemplateFromWire(ts)
	if err != nil {
		t.Fatal(err)
	}
	if out := TemplateToWire(tpl); out != ts {
		t.Errorf("template wire mismatch: %+v", out)
	}
	tplBack, err := TemplateFromDocument(TemplateToDocument(tpl))
	if err != nil || tplBack.Size() != "3.0 KB" || tplBack.Name() != "every" {
		t.Errorf("template document mismatch: %v %v", tplBack, err)
	}
	empty, _ := TemplateFromWire(wire.TemplateSnapshot{Name: "x"})
	if empty.Size() != entity.DefaultTemplateSize {
		t.Errorf("expected default size, got %q", empty.Size())
	}
}

func TestCloudInformationRoundTrips(t *testing.T) {
	c := entity.CloudInformation{
		Started: 1, Runtime: 2, JavaVersion: "21.0.2", CPUUsage: 12.5,
		UsedMemory: 1024, MaxMemory: 4096, SubscribedEvents: 7, Timestamp: 3,
	}
	back, err := CloudInformationFromDocument(CloudInformationToDocument(c))
	if err != nil || back != c {
		t.Errorf("cloud information mismatch: %+v %v", back, err)
	}
	a := entity.AggregateCloudInformation{Timestamp: 9, AvgCPU: 1.5, AvgRAM: 2.5}
	aBack, err := AggregateCloudInformationFromDocument(AggregateCloudInformationToDocument(a))
	if err != nil || aBack != a {
		t.Errorf("aggregate mismatch: %+v %v", aBack, err)
	}
}

func TestCodecRegistry(t *testing.T) {
	g, _ := GroupFromWire(groupSnapshot())
	s, _ := ServiceFromWire(serviceSnapshot())
	p, _ := entity.NewPlayer("Alex", uuid.New(), "", "")

	for _, v := range []any{g, s, p, entity.NewTemplate("every", "")} {
		frame, err := EncodeFrame(v)
		if err != nil {
			t.Fatalf("EncodeFrame(%T) failed: %v", v, err)
		}
		back, err := DecodeFrame(frame)
		if err != nil {
			t.Fatalf("DecodeFrame(%T) failed: %v", v, err)
		}
		if reflect.TypeOf(back) != reflect.TypeOf(v) {
			t.Errorf("expected %T, got %T", v, back)
		}
	}

	if _, err := Groups.EncodeWire(s); !fault.IsContractViolation(err) {
		t.Errorf("expected contract violation for wrong type, got %v", err)
	}
	if _, ok := Lookup("starship"); ok {
		t.Error("expected unknown kind to be absent")
	}
	if _, err := EncodeFrame(42); !fault.IsContractViolation(err) {
		t.Errorf("expected contract violation for unregistered value, got %v", err)
	}
}

func TestCodecUnmarshalChecksPresence(t *testing.T) {
	data, err := wire.Marshal(wire.PlayerSnapshot{Name: "Alex"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Players.Unmarshal(data); !fault.IsSchemaViolation(err) {
		t.Errorf("expected schema violation, got %v", err)
	}
}
