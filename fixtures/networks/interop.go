package networks

import (
	"github.com/filecoin-project/venus-basefee/pkg/config"
	"github.com/filecoin-project/venus-basefee/pkg/constants"
)

func InteropNet() *NetworkConf {
	return &NetworkConf{
		Network: config.NetworkParamsConfig{
			NetworkType: constants.NetworkInterop,
			ForkUpgradeParam: &config.ForkUpgradeConfig{
				UpgradeBreezeHeight:      -2,
				BreezeGasTampingDuration: 0,
				UpgradeSmokeHeight:       -3,
				UpgradeHybridGasHeight:   50,
			},
			FeeParam:       config.NewDefaultFeeConfig(),
			HybridGasParam: config.NewDefaultHybridGasConfig(),
		},
	}
}
