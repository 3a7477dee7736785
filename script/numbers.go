package script

import "strings"

var ones = []string{
	"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
	"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
	"seventeen", "eighteen", "nineteen",
}

var tens = []string{
	"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety",
}

// spellInt renders n (0 <= n <= 999999) as spoken English words.
func spellInt(n int) string {
	if n < 0 {
		return "negative " + spellInt(-n)
	}
	switch {
	case n < 20:
		return ones[n]
	case n < 100:
		w := tens[n/10]
		if n%10 != 0 {
			w += " " + ones[n%10]
		}
		return w
	case n < 1000:
		w := ones[n/100] + " hundred"
		if n%100 != 0 {
			w += " " + spellInt(n%100)
		}
		return w
	case n < 1000000:
		w := spellInt(n/1000) + " thousand"
		if n%1000 != 0 {
			w += " " + spellInt(n%1000)
		}
		return w
	default:
		return spellBigDigitwise(n)
	}
}

// spellBigDigitwise spells each digit individually, used as a
// fallback for numbers outside the named-number range.
func spellBigDigitwise(n int) string {
	s := itoa(n)
	words := make([]string, len(s))
	for i, c := range s {
		words[i] = ones[c-'0']
	}
	return strings.Join(words, " ")
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// spellDigitRun converts a bare run of digit characters to its spoken
// English equivalent. Runs that don't parse as a plain integer (too
// long to matter, or leading zeros beyond one digit) are spelled
// digit-by-digit.
func spellDigitRun(run string) string {
	if (len(run) > 1 && run[0] == '0') || len(run) > 6 {
		return spellEachDigit(run)
	}
	n := 0
	for _, c := range run {
		n = n*10 + int(c-'0')
	}
	return spellInt(n)
}

func spellEachDigit(run string) string {
	words := make([]string, len(run))
	for i, c := range run {
		words[i] = ones[c-'0']
	}
	return strings.Join(words, " ")
}
