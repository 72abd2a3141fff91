package kvload

import (
	"math"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestWorkloadProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// Property 1: every generated key stays inside its pool's closed range,
	// for arbitrary pool sizes and seeds.
	properties.Property("generated keys stay inside their pools", prop.ForAll(
		func(seed int64, primary, counters, collections int) bool {
			cfg := DefaultConfig()
			cfg.PrimaryKeys = primary
			cfg.CounterKeys = counters
			cfg.CollectionKeys = collections
			cfg.ReadRatio = 50
			m := NewMix(cfg, rand.New(rand.NewSource(seed)))

			limits := map[string]int{
				"key":     primary,
				"counter": counters,
				"list":    collections,
				"set":     collections,
				"hash":    collections,
			}
			for i := 0; i < 500; i++ {
				spec := m.Next()
				prefix, suffix, ok := strings.Cut(spec.Key, ":")
				if !ok {
					return false
				}
				n, err := strconv.Atoi(suffix)
				if err != nil {
					return false
				}
				max, ok := limits[prefix]
				if !ok {
					return false
				}
				if n < 1 || n > max {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(1, 2000),
		gen.IntRange(1, 200),
		gen.IntRange(1, 100),
	))

	// Property 2: the observed read fraction tracks the configured ratio
	// within sampling tolerance.
	properties.Property("read fraction tracks the configured ratio", prop.ForAll(
		func(seed int64, ratio int) bool {
			cfg := DefaultConfig()
			cfg.ReadRatio = ratio
			m := NewMix(cfg, rand.New(rand.NewSource(seed)))

			const draws = 4000
			reads := 0
			for i := 0; i < draws; i++ {
				if m.Next().Kind == OpRead {
					reads++
				}
			}
			observed := float64(reads) / draws * 100
			return math.Abs(observed-float64(ratio)) <= 5
		},
		gen.Int64(),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}
