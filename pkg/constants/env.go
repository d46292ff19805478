package constants

import "os"

// DefaultNetworkName is the network used by the cli when none is given on the command line.
var DefaultNetworkName = envOr("VENUS_BASEFEE_NETWORK", "mainnet")

// DisableBaseFeeMetrics skips recording base fee measures, used by tools replaying many rounds.
var DisableBaseFeeMetrics = os.Getenv("VENUS_BASEFEE_DISABLE_METRICS") == "1"

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
