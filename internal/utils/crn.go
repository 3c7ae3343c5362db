package utils

// ValidCRN checks a nutritionist registry number: six or seven digits with an
// optional "-D" check digit. The check digit is only verified on seven digit
// numbers, using mod 11 with weights starting at 2 from the right.
func ValidCRN(crn string) bool {
	number, check := crn, ""
	for i := 0; i < len(crn); i++ {
		if crn[i] == '-' {
			number, check = crn[:i], crn[i+1:]
			break
		}
	}
	if len(number) < 6 || len(number) > 7 || !allDigits(number) {
		return false
	}
	if number == crn {
		return true
	}
	if len(check) != 1 || !allDigits(check) {
		return false
	}
	if len(number) == 6 {
		return true
	}
	return crnCheckDigit(number) == int(check[0]-'0')
}

func crnCheckDigit(number string) int {
	sum, weight := 0, 2
	for i := len(number) - 1; i >= 0; i-- {
		sum += int(number[i]-'0') * weight
		weight++
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
