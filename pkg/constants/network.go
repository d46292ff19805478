package constants

// NetworkType identifies a network whose fork schedule this module knows.
type NetworkType int

const (
	NetworkDefault NetworkType = iota
	NetworkMainnet
	Network2k
	NetworkCalibnet
	NetworkInterop
	Integrationnet
)

// NetworkNameWithNetworkType maps the names accepted on the command line to network types.
var NetworkNameWithNetworkType = map[string]NetworkType{
	"mainnet":        NetworkMainnet,
	"2k":             Network2k,
	"calibrationnet": NetworkCalibnet,
	"calibnet":       NetworkCalibnet,
	"interopnet":     NetworkInterop,
	"integrationnet": Integrationnet,
}

func (nt NetworkType) String() string {
	switch nt {
	case NetworkMainnet:
		return "mainnet"
	case Network2k:
		return "2k"
	case NetworkCalibnet:
		return "calibrationnet"
	case NetworkInterop:
		return "interopnet"
	case Integrationnet:
		return "integrationnet"
	default:
		return "default"
	}
}
