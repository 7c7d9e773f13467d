package editor

import (
	"delivery-map-client/internal/domain"
	"errors"
	"math"
	"strconv"
	"strings"
)

var errInvalidWeight = errors.New("weight must be a number greater than 0")

// ParseWeight accepts a finite decimal greater than zero.
func ParseWeight(s string) (float64, error) {
	w, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
		return 0, domain.NewError(domain.KindValidation, "ParseWeight", errInvalidWeight)
	}
	return w, nil
}

// FormatWeight renders a weight the way the edge dialog pre-fills it.
func FormatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', 2, 64)
}
