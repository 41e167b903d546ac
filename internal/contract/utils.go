package contract

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/foilact/schema"
)

// Agreement thresholds on |ln(measured/predicted)|.
var (
	goodAgreement = math.Log(1.2)
	fairAgreement = math.Log(1.5)
)

// Color variables for console output.
var (
	GoodColor    = color.New(color.FgGreen, color.Bold)
	FairColor    = color.New(color.FgYellow)
	PoorColor    = color.New(color.FgRed, color.Bold)
	MissingColor = color.New(color.FgCyan)
)

// ClassifyAgreement compares a measured mean EoB activity with its predicted value.
// Within 20% either way is good, within 50% fair. When either side is missing or
// non-positive the comparison is not available.
func ClassifyAgreement(measured, predicted float64) schema.Agreement {
	if measured <= 0 || predicted <= 0 || math.IsNaN(measured) || math.IsNaN(predicted) {
		return schema.AgreementMissing
	}
	dev := math.Abs(math.Log(measured / predicted))
	switch {
	case dev <= goodAgreement:
		return schema.AgreementGood
	case dev <= fairAgreement:
		return schema.AgreementFair
	default:
		return schema.AgreementPoor
	}
}

// GetColorLabel returns a colored agreement label for console tables.
func GetColorLabel(a schema.Agreement) string {
	text := string(a)
	switch a {
	case schema.AgreementGood:
		return GoodColor.Sprint(text)
	case schema.AgreementFair:
		return FairColor.Sprint(text)
	case schema.AgreementPoor:
		return PoorColor.Sprint(text)
	default:
		return MissingColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to leave room for the "..." prefix.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
