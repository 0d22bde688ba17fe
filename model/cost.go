package model

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Cost is a money amount in kopecks.
type Cost uint64

var costPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// ParseCost parses a decimal money string ("150", "150.5", "150.50")
// into kopecks.
func ParseCost(s string) (Cost, error) {
	if !costPattern.MatchString(s) {
		return 0, ErrBadPriceFormat(s)
	}
	whole, frac := s, ""
	if dot := strings.Index(s, "."); dot >= 0 {
		whole, frac = s[:dot], s[dot+1:]
	}
	if len(frac) == 1 {
		frac += "0"
	}
	rubles, err := strconv.ParseUint(whole, 10, 64)
	if err != nil {
		return 0, ErrBadPriceFormat(s)
	}
	if rubles > (math.MaxUint64-99)/100 {
		return 0, ErrBadPriceFormat(s)
	}
	kopecks := uint64(0)
	if frac != "" {
		kopecks, err = strconv.ParseUint(frac, 10, 64)
		if err != nil {
			return 0, ErrBadPriceFormat(s)
		}
	}
	return Cost(rubles*100 + kopecks), nil
}

func (c Cost) String() string {
	return fmt.Sprintf("%d.%02d", uint64(c)/100, uint64(c)%100)
}
