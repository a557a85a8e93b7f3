package document

// Shared key vocabulary of the document form. Every node reads and writes
// entity documents with these keys.
const (
	KeyID                = "id"
	KeyName              = "name"
	KeyState             = "state"
	KeyType              = "type"
	KeyGroupName         = "groupName"
	KeyHostname          = "hostname"
	KeyPort              = "port"
	KeyCreatedAt         = "createdAt"
	KeyStartThreshold    = "startThreshold"
	KeyPlatform          = "platform"
	KeyMinMemory         = "minMemory"
	KeyMaxMemory         = "maxMemory"
	KeyMinOnlineService  = "minOnlineService"
	KeyMaxOnlineService  = "maxOnlineService"
	KeyPlayerCount       = "playerCount"
	KeyMaxPlayerCount    = "maxPlayerCount"
	KeyCPUUsage          = "cpuUsage"
	KeyMemoryUsage       = "memoryUsage"
	KeyMotd              = "motd"
	KeyTemplates         = "templates"
	KeyProperties        = "properties"
	KeyVersion           = "version"
	KeyVersions          = "versions"
	KeyInformation       = "information"
	KeyUniqueID          = "uniqueId"
	KeySize              = "size"
	KeyCurrentServerName = "currentServerName"
	KeyCurrentProxyName  = "currentProxyName"

	// Cloud information samples.
	KeyStarted          = "started"
	KeyRuntime          = "runtime"
	KeyJavaVersion      = "javaVersion"
	KeyUsedMemory       = "usedMemory"
	KeySubscribedEvents = "subscribedEvents"
	KeyTimestamp        = "timestamp"
	KeyAvgCPU           = "avgCpu"
	KeyAvgRAM           = "avgRam"
)
