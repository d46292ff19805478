package constants

// ///////
// Limits

const BlockMessageLimit = 10000

// BlockGasLimit is the maximum amount of gas that can be used to execute messages in a single block.
const BlockGasLimit = 10_000_000_000
const BlockGasTarget = BlockGasLimit / 2
const BaseFeeMaxChangeDenom = 8 // 12.5%
const InitialBaseFee = 100e6
const MinimumBaseFee = 100
const PackingEfficiencyNum = 4
const PackingEfficiencyDenom = 5

// TampingBaseFee is the base fee held during the post-breeze gas tamping window.
const TampingBaseFee = 100

// MessageMetaCacheSize bounds the number of decoded block message lists kept by the message store.
const MessageMetaCacheSize = 4096
