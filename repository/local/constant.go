package local

const (
	LocalPersistentName string = "local"

	FORMAT_JSON string = "json"
	FORMAT_YAML string = "yaml"

	DefaultDataDir  string = "data"
	DefaultDataFile string = "sqlman"
)
