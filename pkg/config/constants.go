package config

const (
	EnvPrefix = "SOUNDSHELF"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DefaultMaxUploadMB = 10

	EnvDBDSN  = "SOUNDSHELF_DB_DSN"
	EnvDBHost = "SOUNDSHELF_DB_HOST"
	EnvDBUser = "SOUNDSHELF_DB_USER"
	EnvDBName = "SOUNDSHELF_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
