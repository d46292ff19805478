package config

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/filecoin-project/go-state-types/abi"
	"github.com/pkg/errors"

	"github.com/filecoin-project/venus-basefee/pkg/basefee"
	"github.com/filecoin-project/venus-basefee/pkg/constants"
)

// Config is an in memory representation of the configuration file
type Config struct {
	NetworkParams *NetworkParamsConfig `json:"parameters"`
}

// NetworkParamsConfig holds the base fee parameters of one network.
type NetworkParamsConfig struct {
	NetworkType      constants.NetworkType `json:"networkType"`
	ForkUpgradeParam *ForkUpgradeConfig    `json:"forkUpgradeParam"`
	FeeParam         *FeeConfig            `json:"feeParam"`
	HybridGasParam   *HybridGasConfig      `json:"hybridGasParam"`
}

// ForkUpgradeConfig holds the heights of the upgrades that change the base fee rule.
// A negative height means the upgrade is active from genesis.
type ForkUpgradeConfig struct {
	UpgradeBreezeHeight      abi.ChainEpoch `json:"upgradeBreezeHeight"`
	BreezeGasTampingDuration abi.ChainEpoch `json:"breezeGasTampingDuration"`
	UpgradeSmokeHeight       abi.ChainEpoch `json:"upgradeSmokeHeight"`
	UpgradeHybridGasHeight   abi.ChainEpoch `json:"upgradeHybridGasHeight"`
}

// FeeConfig holds the fee market constants.
type FeeConfig struct {
	BlockGasTarget         int64 `json:"blockGasTarget"`
	BaseFeeMaxChangeDenom  int64 `json:"baseFeeMaxChangeDenom"`
	MinimumBaseFee         int64 `json:"minimumBaseFee"`
	PackingEfficiencyNum   int64 `json:"packingEfficiencyNum"`
	PackingEfficiencyDenom int64 `json:"packingEfficiencyDenom"`
	TampingBaseFee         int64 `json:"tampingBaseFee"`
}

// HybridGasConfig holds the sigmoid weighting parameters, in millionths.
type HybridGasConfig struct {
	MinSpaceWeight int64 `json:"minSpaceWeight"`
	MaxSpaceWeight int64 `json:"maxSpaceWeight"`
	Steepness      int64 `json:"steepness"`
	Center         int64 `json:"center"`
}

// NewDefaultFeeConfig returns the mainnet fee market constants.
func NewDefaultFeeConfig() *FeeConfig {
	return &FeeConfig{
		BlockGasTarget:         constants.BlockGasTarget,
		BaseFeeMaxChangeDenom:  constants.BaseFeeMaxChangeDenom,
		MinimumBaseFee:         constants.MinimumBaseFee,
		PackingEfficiencyNum:   constants.PackingEfficiencyNum,
		PackingEfficiencyDenom: constants.PackingEfficiencyDenom,
		TampingBaseFee:         constants.TampingBaseFee,
	}
}

// NewDefaultHybridGasConfig returns the weighting used on every known network.
func NewDefaultHybridGasConfig() *HybridGasConfig {
	return &HybridGasConfig{
		MinSpaceWeight: int64(basefee.DefaultMinSpaceWeight),
		MaxSpaceWeight: int64(basefee.DefaultMaxSpaceWeight),
		Steepness:      int64(basefee.DefaultSteepness),
		Center:         int64(basefee.DefaultCenter),
	}
}

func newDefaultNetworkParamsConfig() *NetworkParamsConfig {
	return &NetworkParamsConfig{
		NetworkType: constants.NetworkMainnet,
		ForkUpgradeParam: &ForkUpgradeConfig{
			UpgradeBreezeHeight:      41280,
			BreezeGasTampingDuration: 120,
			UpgradeSmokeHeight:       51000,
			UpgradeHybridGasHeight:   99999999,
		},
		FeeParam:       NewDefaultFeeConfig(),
		HybridGasParam: NewDefaultHybridGasConfig(),
	}
}

// NewDefaultConfig returns a config object with all the fields filled out to
// their default values
func NewDefaultConfig() *Config {
	return &Config{
		NetworkParams: newDefaultNetworkParamsConfig(),
	}
}

// BaseFeeParams converts the network parameters into the form the base fee
// computation reads.
func (np *NetworkParamsConfig) BaseFeeParams() basefee.Params {
	return basefee.Params{
		BlockGasTarget:         np.FeeParam.BlockGasTarget,
		BaseFeeMaxChangeDenom:  np.FeeParam.BaseFeeMaxChangeDenom,
		MinimumBaseFee:         np.FeeParam.MinimumBaseFee,
		PackingEfficiencyNum:   np.FeeParam.PackingEfficiencyNum,
		PackingEfficiencyDenom: np.FeeParam.PackingEfficiencyDenom,
		TampingBaseFee:         np.FeeParam.TampingBaseFee,

		UpgradeBreezeHeight:      np.ForkUpgradeParam.UpgradeBreezeHeight,
		BreezeGasTampingDuration: np.ForkUpgradeParam.BreezeGasTampingDuration,
		UpgradeSmokeHeight:       np.ForkUpgradeParam.UpgradeSmokeHeight,
		UpgradeHybridGasHeight:   np.ForkUpgradeParam.UpgradeHybridGasHeight,

		MinSpaceWeight: basefee.FixedPoint(np.HybridGasParam.MinSpaceWeight),
		MaxSpaceWeight: basefee.FixedPoint(np.HybridGasParam.MaxSpaceWeight),
		Steepness:      basefee.FixedPoint(np.HybridGasParam.Steepness),
		Center:         basefee.FixedPoint(np.HybridGasParam.Center),
	}
}

// Validate checks every section is present and yields usable base fee parameters.
func (cfg *Config) Validate() error {
	np := cfg.NetworkParams
	switch {
	case np == nil:
		return errors.New("missing parameters section")
	case np.ForkUpgradeParam == nil:
		return errors.New("missing parameters.forkUpgradeParam section")
	case np.FeeParam == nil:
		return errors.New("missing parameters.feeParam section")
	case np.HybridGasParam == nil:
		return errors.New("missing parameters.hybridGasParam section")
	}
	p := np.BaseFeeParams()
	return errors.Wrap(p.Validate(), "invalid base fee parameters")
}

// WriteFile writes the config to the given filepath.
func (cfg *Config) WriteFile(file string) error {
	configString, err := json.MarshalIndent(*cfg, "", "\t")
	if err != nil {
		return err
	}

	return os.WriteFile(file, configString, 0644)
}

// ReadFile reads a config file from disk. Sections missing from the file keep
// their default values.
func ReadFile(file string) (*Config, error) {
	cfg := NewDefaultConfig()
	rawConfig, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	if len(rawConfig) == 0 {
		return cfg, nil
	}

	if err := json.Unmarshal(rawConfig, cfg); err != nil {
		return nil, errors.Wrapf(err, "decoding config %s", file)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", file)
	}
	return cfg, nil
}

func (cfg *Config) traverseConfig(key string,
	f func(reflect.Value, string) (interface{}, error)) (interface{}, error) {
	v := reflect.Indirect(reflect.ValueOf(cfg))
	keyTags := strings.Split(key, ".")
OUTER:
	for j, keyTag := range keyTags {
		if v.Type().Kind() == reflect.Struct {
			for i := 0; i < v.NumField(); i++ {
				jsonTag := strings.Split(v.Type().Field(i).Tag.Get("json"), ",")[0]
				if jsonTag == keyTag {
					v = v.Field(i)
					if j == len(keyTags)-1 {
						return f(v, key)
					}
					v = reflect.Indirect(v) // only attempt one dereference
					continue OUTER
				}
			}
		}

		return nil, fmt.Errorf("key: %s invalid for config", key)
	}
	// Cannot get here as len(strings.Split(s, sep)) >= 1 with non-empty sep
	return nil, fmt.Errorf("empty key is invalid")
}

// Get gets the config sub-struct referenced by `key`, e.g. 'parameters.feeParam'
func (cfg *Config) Get(key string) (interface{}, error) {
	f := func(v reflect.Value, key string) (interface{}, error) {
		return v.Interface(), nil
	}

	return cfg.traverseConfig(key, f)
}

// Set sets the config value referenced by `key` to the JSON encoded jsonVal.
func (cfg *Config) Set(key string, jsonVal string) error {
	f := func(v reflect.Value, key string) (interface{}, error) {
		valToSet := reflect.New(v.Type())
		if err := json.Unmarshal([]byte(jsonVal), valToSet.Interface()); err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("input could not be marshaled to sub-config at: %s", key))
		}
		v.Set(valToSet.Elem())
		return v.Interface(), nil
	}

	_, err := cfg.traverseConfig(key, f)
	return err
}
