package networks

import (
	"github.com/filecoin-project/venus-basefee/pkg/config"
	"github.com/filecoin-project/venus-basefee/pkg/constants"
)

// IntegrationNet follows the mainnet schedule with the hybrid upgrade
// activated, for replaying mainnet shaped rounds under the new rule.
func IntegrationNet() *NetworkConf {
	return &NetworkConf{
		Network: config.NetworkParamsConfig{
			NetworkType: constants.Integrationnet,
			ForkUpgradeParam: &config.ForkUpgradeConfig{
				UpgradeBreezeHeight:      41280,
				BreezeGasTampingDuration: 120,
				UpgradeSmokeHeight:       51000,
				UpgradeHybridGasHeight:   60000,
			},
			FeeParam:       config.NewDefaultFeeConfig(),
			HybridGasParam: config.NewDefaultHybridGasConfig(),
		},
	}
}
