// Package config loads runtime configuration and resolves the directories the
// license state lives in.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// environment variables prefixed with AUTONAVER_:
//
//	AUTONAVER_REGISTRY_SPREADSHEET_ID=1fce6T...
//	AUTONAVER_REGISTRY_TIMEOUT=10s
//	AUTONAVER_LOGGING_LEVEL=debug
//	AUTONAVER_PATHS_STATE_DIR=/var/lib/autonaver
//
// The file is taken from AUTONAVER_CONFIG, or config.yaml next to the
// executable, or config.yaml in the working directory.
//
// # Paths
//
// The state directory must survive upgrades that move the executable. On
// Windows it is the first creatable of %APPDATA%, %LOCALAPPDATA%,
// %PROGRAMDATA% and the home directory, joined with Auto_Naver. Elsewhere it is
// the user config directory joined with Auto_Naver, falling back to the legacy
// setting directory next to the executable.
package config
