package allocation

// Percent returns v as a percentage with two decimals, "-" when unknown.
func (v Value) Percent() string {
	if !v.known {
		return "-"
	}
	return v.value.StringFixed(2) + "%"
}

// SignedPercent is like Percent but always prints the sign, so that
// deviations read as "+1.50%" or "-2.00%".
func (v Value) SignedPercent() string {
	if !v.known {
		return "-"
	}
	if v.value.IsNegative() {
		return v.value.StringFixed(2) + "%"
	}
	return "+" + v.value.StringFixed(2) + "%"
}
