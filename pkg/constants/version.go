package constants

import (
	"os"
)

// BuildVersion is the local build version, set by build system
const BuildVersion = "0.2.0"

var CurrentCommit string

// software version
func UserVersion() string {
	if os.Getenv("VENUS_BASEFEE_VERSION_IGNORE_COMMIT") == "1" {
		return BuildVersion
	}

	return BuildVersion + CurrentCommit
}
