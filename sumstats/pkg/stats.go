package sumstats

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat/distuv"
)

func handle(format string) func(...any) error {
	return func(args ...any) error {
		return fmt.Errorf(format, args...)
	}
}

var chi2df1 = distuv.ChiSquared{K: 1, Src: nil}

// Upper tail probability of a 1 degree of freedom chi-square statistic.
func PvalFromChi2(x float64) float64 {
	return chi2df1.Survival(x)
}

// The chi-square statistic above which a 1 df test has p < 10^-pexp. A 1 df
// chi-square is a squared standard normal, and the normal quantile keeps its
// precision far out in the tail.
func Chi2Threshold(pexp float64) float64 {
	p := math.Pow(10, -pexp)
	z := distuv.UnitNormal.Quantile(p / 2)
	return z * z
}

func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
