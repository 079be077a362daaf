package config

import "time"

const (
	// AppName names the state directory and the per-user registry key.
	AppName    = "Auto_Naver"
	AppVersion = "2.1.0"

	// EnvPrefix prefixes every environment variable, e.g. AUTONAVER_REGISTRY_TIMEOUT.
	EnvPrefix = "AUTONAVER"
	// ConfigEnvVar points at an explicit configuration file.
	ConfigEnvVar = "AUTONAVER_CONFIG"

	// LegacyDirName is the directory next to the executable used by older builds.
	LegacyDirName = "setting"
	LogsDirName   = "logs"
	LogFileName   = "autonaver.log"
	// LicenseFileName is the license record file name in every directory.
	LicenseFileName = "license.json"

	DefaultSpreadsheetID = "1fce6TBReHs9fMuUtI7ovSkNPnbHtawMUY-IfyIOhGC4"
	DefaultSheetName     = "시트1"
	RegistryTimeout      = 10 * time.Second
	RegistryRatePerMin   = 30
	RegistryBurst        = 3
)
