package docx

import "strconv"

// EMUPerInch is the number of English Metric Units in one inch.
const EMUPerInch = 914400

// Length is a distance in English Metric Units, DrawingML's native unit.
type Length int64

// Inches converts inches to a Length, truncating fractional EMUs.
func Inches(in float64) Length {
	return Length(in * EMUPerInch)
}

// Inches returns the length in inches.
func (l Length) Inches() float64 {
	return float64(l) / EMUPerInch
}

// String returns the EMU count in decimal, as written to XML attributes.
func (l Length) String() string {
	return strconv.FormatInt(int64(l), 10)
}
