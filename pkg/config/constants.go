package config

const (
	// EnvPrefix namespaces every AgriTrust environment variable.
	EnvPrefix = "AGRITRUST"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "AGRITRUST_DB_DSN"
	EnvDBHost = "AGRITRUST_DB_HOST"
	EnvDBUser = "AGRITRUST_DB_USER"
	EnvDBName = "AGRITRUST_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
