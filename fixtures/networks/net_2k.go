package networks

import (
	"github.com/filecoin-project/venus-basefee/pkg/config"
	"github.com/filecoin-project/venus-basefee/pkg/constants"
)

func Net2k() *NetworkConf {
	return &NetworkConf{
		Network: config.NetworkParamsConfig{
			NetworkType: constants.Network2k,
			ForkUpgradeParam: &config.ForkUpgradeConfig{
				UpgradeBreezeHeight:      -1,
				BreezeGasTampingDuration: 0,
				UpgradeSmokeHeight:       -1,
				UpgradeHybridGasHeight:   -1,
			},
			FeeParam:       config.NewDefaultFeeConfig(),
			HybridGasParam: config.NewDefaultHybridGasConfig(),
		},
	}
}
