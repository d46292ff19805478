package networks

import (
	"fmt"
	"strings"

	logging "github.com/ipfs/go-log/v2"

	"github.com/filecoin-project/venus-basefee/pkg/config"
	"github.com/filecoin-project/venus-basefee/pkg/constants"
)

var log = logging.Logger("network-params")

func GetNetworkFromName(name string) (constants.NetworkType, error) {
	if name == "2k" || strings.HasPrefix(name, "localnet-") {
		return constants.Network2k, nil
	}
	nt, ok := constants.NetworkNameWithNetworkType[name]
	if !ok {
		return constants.NetworkDefault, fmt.Errorf("unknown network name %s", name)
	}
	return nt, nil
}

// SetConfigFromOptions replaces the network parameters of cfg with those of the named network.
func SetConfigFromOptions(cfg *config.Config, networkName string) error {
	netcfg, err := GetNetworkConfigFromName(networkName)
	if err != nil {
		return err
	}
	cfg.NetworkParams = &netcfg.Network
	if netcfg.Network.ForkUpgradeParam.UpgradeHybridGasHeight < 0 {
		log.Infof("hybrid gas pricing active from genesis on %s", netcfg.Network.NetworkType)
	}
	return nil
}

func GetNetworkConfigFromType(networkType constants.NetworkType) (*NetworkConf, error) {
	switch networkType {
	case constants.NetworkMainnet:
		return Mainnet(), nil
	case constants.Integrationnet:
		return IntegrationNet(), nil
	case constants.Network2k:
		return Net2k(), nil
	case constants.NetworkCalibnet:
		return Calibration(), nil
	case constants.NetworkInterop:
		return InteropNet(), nil
	}

	return nil, fmt.Errorf("unknown network type %d", networkType)
}

func GetNetworkConfigFromName(networkName string) (*NetworkConf, error) {
	networkType, err := GetNetworkFromName(networkName)
	if err != nil {
		return nil, err
	}

	return GetNetworkConfigFromType(networkType)
}
