// Package activity holds the decay arithmetic shared by efficiency calibration and
// routine activity measurement: decay constants, timestamp differences, and the
// correction chain that turns net peak areas into activities with uncertainties.
package activity

import (
	"fmt"
	"math"
	"strings"

	"github.com/huangsam/foilact/internal/contract"
	"github.com/huangsam/foilact/schema"
)

// DecayConstant converts a half-life into a decay constant in 1/s.
// The uncertainty follows from first-order propagation of the half-life uncertainty.
func DecayConstant(halfLife, errHalfLife float64, unit schema.HalfLifeUnit) (float64, float64, error) {
	mult, ok := schema.HalfLifeSeconds[schema.HalfLifeUnit(strings.ToLower(string(unit)))]
	if !ok {
		return 0, 0, fmt.Errorf("%w: unit of measurement %q not recognised", contract.ErrValue, unit)
	}
	if halfLife <= 0 {
		return 0, 0, fmt.Errorf("%w: half-life must be positive, got %g", contract.ErrValue, halfLife)
	}
	t := halfLife * mult
	lambda := math.Ln2 / t
	errLambda := lambda * lambda * errHalfLife * mult / math.Ln2
	return lambda, errLambda, nil
}
