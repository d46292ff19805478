package networks

import "github.com/filecoin-project/venus-basefee/pkg/config"

type NetworkConf struct {
	Network config.NetworkParamsConfig
}
