package networks

import (
	"github.com/filecoin-project/venus-basefee/pkg/config"
	"github.com/filecoin-project/venus-basefee/pkg/constants"
)

func Calibration() *NetworkConf {
	return &NetworkConf{
		Network: config.NetworkParamsConfig{
			NetworkType: constants.NetworkCalibnet,
			ForkUpgradeParam: &config.ForkUpgradeConfig{
				UpgradeBreezeHeight:      -1,
				BreezeGasTampingDuration: 120,
				UpgradeSmokeHeight:       -2,
				UpgradeHybridGasHeight:   3_600_000,
			},
			FeeParam:       config.NewDefaultFeeConfig(),
			HybridGasParam: config.NewDefaultHybridGasConfig(),
		},
	}
}
