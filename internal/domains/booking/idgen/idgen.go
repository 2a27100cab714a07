// Package idgen produces human friendly booking ids of the form JGU12345.
package idgen

//go:generate go run go.uber.org/mock/mockgen -source=./idgen.go -destination=./mocks/idgen_mock.go -package=mocks

import (
	"fmt"
	"math/rand/v2"
	"regexp"
)

const (
	Prefix = "JGU"

	minSuffix = 10000
	maxSuffix = 99999
)

var pattern = regexp.MustCompile(`^` + Prefix + `\d{5}$`)

type Generator interface {
	Next() string
}

type randomGenerator struct{}

func New() Generator {
	return randomGenerator{}
}

// Next draws a suffix uniformly from [10000, 99999]. Uniqueness is checked by the caller.
func (randomGenerator) Next() string {
	return fmt.Sprintf("%s%d", Prefix, minSuffix+rand.IntN(maxSuffix-minSuffix+1)) //nolint:gosec
}

func Valid(id string) bool {
	return pattern.MatchString(id)
}
