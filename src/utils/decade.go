package utils

// PreviousDecade rounds year down to a multiple of ten.
func PreviousDecade(year int) int {
	r := year % 10
	if r < 0 {
		r += 10
	}
	return year - r
}

// NextDecade rounds year up to a multiple of ten.
func NextDecade(year int) int {
	prev := PreviousDecade(year)
	if prev == year {
		return year
	}
	return prev + 10
}
