package basefee

// SigmoidTableSize is the number of samples in the frozen logistic table.
const SigmoidTableSize = 61

const (
	sigmoidStep   = Precision / 10
	sigmoidDomain = 3 * Precision
)

// sigmoidTable samples 1/(1+e^-x) at x = -3.0, -2.9, ..., 3.0, rounded half up to
// the nearest millionth. These values are consensus constants: they must never
// be regenerated at runtime or changed without a network upgrade.
var sigmoidTable = [SigmoidTableSize]FixedPoint{
	47426, 52154, 57324, 62973, 69138, 75858, 83173, 91123, 99750, 109097,
	119203, 130108, 141851, 154465, 167982, 182426, 197816, 214165, 231475, 249740,
	268941, 289050, 310026, 331812, 354344, 377541, 401312, 425557, 450166, 475021,
	500000, 524979, 549834, 574443, 598688, 622459, 645656, 668188, 689974, 710950,
	731059, 750260, 768525, 785835, 802184, 817574, 832018, 845535, 858149, 869892,
	880797, 890903, 900250, 908877, 916827, 924142, 930862, 937027, 942676, 947846,
	952574,
}

// SigmoidTable returns a copy of the logistic lookup table.
func SigmoidTable() [SigmoidTableSize]FixedPoint {
	return sigmoidTable
}

// Sigmoid evaluates the logistic function at x by linear interpolation between
// neighbouring table samples. Inputs outside [-3, 3] saturate to the table ends.
// All divisions truncate.
func Sigmoid(x FixedPoint) FixedPoint {
	x = clampFixed(x, -sigmoidDomain, sigmoidDomain)

	shifted := x + sigmoidDomain
	i := int(shifted / sigmoidStep)
	r := shifted % sigmoidStep
	if i >= SigmoidTableSize-1 {
		return sigmoidTable[SigmoidTableSize-1]
	}

	lo, hi := sigmoidTable[i], sigmoidTable[i+1]
	return lo + (hi-lo)*r/sigmoidStep
}

// SpaceWeight is the share of physical gas in the effective gas of a round
// with the given normalized duplication, bounded by the params' weight limits.
func SpaceWeight(normalized FixedPoint, p *Params) FixedPoint {
	x := normalized*p.Steepness/Precision - p.Center
	return clampFixed(Sigmoid(x), p.MinSpaceWeight, p.MaxSpaceWeight)
}
