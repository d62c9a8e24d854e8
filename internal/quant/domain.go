package quant

// Domain is the numeric range of a quantization target integer type.
type Domain struct {
	Min float32
	Max float32
}

// Uint8Domain returns the domain for unsigned 8-bit targets.
func Uint8Domain() Domain {
	return Domain{Min: 0, Max: 255}
}

// Int8Domain returns the domain for signed 8-bit targets. The true minimum
// is -128; it is narrowed to -127 so the zero-point can land exactly on 0.
func Int8Domain() Domain {
	return Domain{Min: -127, Max: 127}
}

// Clamp limits v to [Min, Max]. NaN passes through unchanged.
func (d Domain) Clamp(v float32) float32 {
	if v < d.Min {
		return d.Min
	}
	if v > d.Max {
		return d.Max
	}
	return v
}

// Width is the number of quantization steps spanned by the domain.
func (d Domain) Width() float32 {
	return d.Max - d.Min
}

// Contains reports whether v lies within the domain.
func (d Domain) Contains(v float32) bool {
	return v >= d.Min && v <= d.Max
}
