package networks

import (
	"github.com/filecoin-project/venus-basefee/pkg/config"
	"github.com/filecoin-project/venus-basefee/pkg/constants"
)

func Mainnet() *NetworkConf {
	return &NetworkConf{
		Network: config.NetworkParamsConfig{
			NetworkType: constants.NetworkMainnet,
			ForkUpgradeParam: &config.ForkUpgradeConfig{
				UpgradeBreezeHeight:      41280,
				BreezeGasTampingDuration: 120,
				UpgradeSmokeHeight:       51000,
				// not yet scheduled
				UpgradeHybridGasHeight: 99999999,
			},
			FeeParam:       config.NewDefaultFeeConfig(),
			HybridGasParam: config.NewDefaultHybridGasConfig(),
		},
	}
}
