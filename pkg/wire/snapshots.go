package wire

// Snapshot is implemented by every wire snapshot type.
type Snapshot interface {
	// Kind returns the entity kind tag of the snapshot.
	Kind() Kind

	// requiredFields lists the keys that must be present when decoding.
	// Nested keys use dotted paths.
	requiredFields() []string
}

// GroupSnapshot is the wire form of a service group.
type GroupSnapshot struct {
	Name                        string                `cbor:"name" json:"name"`
	MinimumMemory               int32                 `cbor:"minimumMemory" json:"minimumMemory"`
	MaximumMemory               int32                 `cbor:"maximumMemory" json:"maximumMemory"`
	MinimumOnline               int32                 `cbor:"minimumOnline" json:"minimumOnline"`
	MaximumOnline               int32                 `cbor:"maximumOnline" json:"maximumOnline"`
	Platform                    PlatformIndexSnapshot `cbor:"platform" json:"platform"`
	PercentageToStartNewService float64               `cbor:"percentageToStartNewService" json:"percentageToStartNewService"`
	CreatedAt                   int64                 `cbor:"createdAt" json:"createdAt"`
	Templates                   []TemplateSnapshot    `cbor:"templates" json:"templates"`
	Properties                  map[string]string     `cbor:"properties" json:"properties"`
}

// Kind implements Snapshot.
func (GroupSnapshot) Kind() Kind { return KindGroup }

func (GroupSnapshot) requiredFields() []string {
	return []string{
		"name",
		"minimumMemory",
		"maximumMemory",
		"minimumOnline",
		"maximumOnline",
		"platform",
		"platform.name",
		"platform.version",
	}
}

// ServiceSnapshot is the wire form of a running service instance.
type ServiceSnapshot struct {
	GroupName      string                     `cbor:"groupName" json:"groupName"`
	ID             int32                      `cbor:"id" json:"id"`
	State          ServiceState               `cbor:"state" json:"state"`
	ServerType     GroupType                  `cbor:"serverType" json:"serverType"`
	Properties     map[string]string          `cbor:"properties" json:"properties"`
	Hostname       string                     `cbor:"hostname" json:"hostname"`
	Port           int32                      `cbor:"port" json:"port"`
	Templates      []TemplateSnapshot         `cbor:"templates" json:"templates"`
	Information    ServiceInformationSnapshot `cbor:"information" json:"information"`
	MinimumMemory  int32                      `cbor:"minimumMemory" json:"minimumMemory"`
	MaximumMemory  int32                      `cbor:"maximumMemory" json:"maximumMemory"`
	MaxPlayerCount int32                      `cbor:"maxPlayerCount" json:"maxPlayerCount"`
	PlayerCount    int32                      `cbor:"playerCount" json:"playerCount"`
	MemoryUsage    float64                    `cbor:"memoryUsage" json:"memoryUsage"`
	CPUUsage       float64                    `cbor:"cpuUsage" json:"cpuUsage"`
	Motd           string                     `cbor:"motd" json:"motd"`
}

// Kind implements Snapshot.
func (ServiceSnapshot) Kind() Kind { return KindService }

func (ServiceSnapshot) requiredFields() []string {
	return []string{"groupName", "id", "state", "serverType", "minimumMemory", "maximumMemory"}
}

// ServiceInformationSnapshot carries static facts about a service instance.
type ServiceInformationSnapshot struct {
	CreatedAt int64 `cbor:"createdAt" json:"createdAt"`
}

// Kind implements Snapshot.
func (ServiceInformationSnapshot) Kind() Kind { return KindServiceInformation }

func (ServiceInformationSnapshot) requiredFields() []string {
	return []string{"createdAt"}
}

// PlayerSnapshot is the wire form of a connected player.
type PlayerSnapshot struct {
	Name              string `cbor:"name" json:"name"`
	UniqueID          string `cbor:"uniqueId" json:"uniqueId"`
	CurrentServerName string `cbor:"currentServerName" json:"currentServerName"`
	CurrentProxyName  string `cbor:"currentProxyName" json:"currentProxyName"`
}

// Kind implements Snapshot.
func (PlayerSnapshot) Kind() Kind { return KindPlayer }

func (PlayerSnapshot) requiredFields() []string {
	return []string{"name", "uniqueId"}
}

// TemplateSnapshot is the wire form of a template.
type TemplateSnapshot struct {
	Name string `cbor:"name" json:"name"`
	Size string `cbor:"size" json:"size"`
}

// Kind implements Snapshot.
func (TemplateSnapshot) Kind() Kind { return KindTemplate }

func (TemplateSnapshot) requiredFields() []string {
	return []string{"name"}
}

// PlatformSnapshot is the wire form of a platform and its versions.
type PlatformSnapshot struct {
	Name     string                    `cbor:"name" json:"name"`
	Type     GroupType                 `cbor:"type" json:"type"`
	Versions []PlatformVersionSnapshot `cbor:"versions" json:"versions"`
}

// Kind implements Snapshot.
func (PlatformSnapshot) Kind() Kind { return KindPlatform }

func (PlatformSnapshot) requiredFields() []string {
	return []string{"name", "type"}
}

// PlatformVersionSnapshot is the wire form of a single platform version.
type PlatformVersionSnapshot struct {
	Version string `cbor:"version" json:"version"`
}

// Kind implements Snapshot.
func (PlatformVersionSnapshot) Kind() Kind { return KindPlatformVersion }

func (PlatformVersionSnapshot) requiredFields() []string {
	return []string{"version"}
}

// PlatformIndexSnapshot references a platform by name and version.
type PlatformIndexSnapshot struct {
	Name    string `cbor:"name" json:"name"`
	Version string `cbor:"version" json:"version"`
}

// Kind implements Snapshot.
func (PlatformIndexSnapshot) Kind() Kind { return KindPlatformIndex }

func (PlatformIndexSnapshot) requiredFields() []string {
	return []string{"name", "version"}
}

// CloudInformationSnapshot is a periodic health sample of a controller node.
type CloudInformationSnapshot struct {
	Started          int64   `cbor:"started" json:"started"`
	Runtime          int64   `cbor:"runtime" json:"runtime"`
	JavaVersion      string  `cbor:"javaVersion" json:"javaVersion"`
	CPUUsage         float64 `cbor:"cpuUsage" json:"cpuUsage"`
	UsedMemory       float64 `cbor:"usedMemory" json:"usedMemory"`
	MaxMemory        float64 `cbor:"maxMemory" json:"maxMemory"`
	SubscribedEvents int32   `cbor:"subscribedEvents" json:"subscribedEvents"`
	Timestamp        int64   `cbor:"timestamp" json:"timestamp"`
}

// Kind implements Snapshot.
func (CloudInformationSnapshot) Kind() Kind { return KindCloudInformation }

func (CloudInformationSnapshot) requiredFields() []string {
	return []string{"timestamp"}
}

// AggregateCloudInformationSnapshot is an averaged health sample over a window.
type AggregateCloudInformationSnapshot struct {
	Timestamp int64   `cbor:"timestamp" json:"timestamp"`
	AvgCPU    float64 `cbor:"avgCpu" json:"avgCpu"`
	AvgRAM    float64 `cbor:"avgRam" json:"avgRam"`
}

// Kind implements Snapshot.
func (AggregateCloudInformationSnapshot) Kind() Kind { return KindAggregateCloudInformation }

func (AggregateCloudInformationSnapshot) requiredFields() []string {
	return []string{"timestamp"}
}

// New returns a pointer to an empty snapshot of the given kind, or nil for an
// unknown kind.
func New(kind Kind) Snapshot {
	switch kind {
	case KindGroup:
		return &GroupSnapshot{}
	case KindService:
		return &ServiceSnapshot{}
	case KindPlayer:
		return &PlayerSnapshot{}
	case KindTemplate:
		return &TemplateSnapshot{}
	case KindPlatform:
		return &PlatformSnapshot{}
	case KindPlatformVersion:
		return &PlatformVersionSnapshot{}
	case KindPlatformIndex:
		return &PlatformIndexSnapshot{}
	case KindServiceInformation:
		return &ServiceInformationSnapshot{}
	case KindCloudInformation:
		return &CloudInformationSnapshot{}
	case KindAggregateCloudInformation:
		return &AggregateCloudInformationSnapshot{}
	}
	return nil
}
