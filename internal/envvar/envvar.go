package envvar

const (
	// ZoocardEnv is the environment variable used to determine the environment
	ZoocardEnv = "ZOOCARD_ENV"

	// ZoocardZooRoot is the environment variable used to override the zoo root directory
	ZoocardZooRoot = "ZOOCARD_ZOO_ROOT"

	// ZoocardServerPort is the environment variable used to determine the HTTP port
	ZoocardServerPort = "ZOOCARD_SERVER_PORT"
)
