package datapoint

import "fmt"

// rawKind is the wire "data type" half of a reply descriptor: how many raw
// bytes follow and how to sign-extend them. Grounded on the host driver's
// decode_data dispatch table.
type rawKind byte

const (
	rawNone    rawKind = 0x0
	rawInt8    rawKind = 0x1
	rawInt8Alt rawKind = 0x2
	rawInt16   rawKind = 0x3
	rawUint16  rawKind = 0x4
	rawInt32   rawKind = 0x5
	rawUint32  rawKind = 0x6
	rawUint32B rawKind = 0x7
	rawText    rawKind = 0x9
	rawInt8C   rawKind = 0xa
)

// Scaling is the wire "conversion type" half of a reply descriptor: how the
// raw integer is turned into the reported value (spec §4.5).
type Scaling byte

const (
	ScaleNone   Scaling = 0x0
	ScaleDiv10N Scaling = 0x1
	ScaleDivN   Scaling = 0x2
	ScaleMulN   Scaling = 0x3
	ScaleMul10N Scaling = 0x4
	// scaleDiv10NAlt duplicates ScaleDiv10N: the host driver's conversion
	// table maps both 0x1 and 0x5 to "divide by 10^conversionValue". Spec §9
	// flags this pair as disagreeing across documentation; since original
	// source code is the only unambiguous evidence we have, its behavior is
	// the one implemented here.
	scaleDiv10NAlt Scaling = 0x5
	// ScalePowerW is not a wire conversion-type value: it is applied by
	// DecodeReply when the requesting PointID is GridPower, overriding
	// whatever conversion type accompanied the raw reply, per spec §4.5's
	// "PowerW" scaling entry which is point-specific rather than a generic
	// wire opcode.
	ScalePowerW Scaling = 0xff
)

func (s Scaling) String() string {
	switch s {
	case ScaleNone:
		return "none"
	case ScaleDiv10N, scaleDiv10NAlt:
		return "div10^n"
	case ScaleDivN:
		return "div-n"
	case ScaleMulN:
		return "mul-n"
	case ScaleMul10N:
		return "mul10^n"
	case ScalePowerW:
		return "power-w"
	default:
		return fmt.Sprintf("scaling(0x%02x)", byte(s))
	}
}

// apply converts a decoded raw integer to a float using scaling with
// parameter n (the wire "conversion value").
func apply(s Scaling, raw int64, n int64) float64 {
	switch s {
	case ScaleDiv10N, scaleDiv10NAlt:
		return float64(raw) / pow10(n)
	case ScaleMul10N:
		return float64(raw) * pow10(n)
	case ScaleDivN:
		if n == 0 {
			return float64(raw)
		}
		return float64(raw) / float64(n)
	case ScaleMulN:
		if n == 0 {
			return float64(raw)
		}
		return float64(raw) * float64(n)
	case ScalePowerW:
		return float64(raw)
	default:
		return float64(raw)
	}
}

func pow10(n int64) float64 {
	if n < 0 {
		v := 1.0
		for i := int64(0); i < -n; i++ {
			v *= 10
		}
		return 1 / v
	}
	v := 1.0
	for i := int64(0); i < n; i++ {
		v *= 10
	}
	return v
}
