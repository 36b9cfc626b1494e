package world

import (
	"hash/fnv"
	"math"
	"math/rand"
)

func DeterministicSeedValue(rootSeed, label string) int64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(rootSeed))
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

func NewDeterministicRNG(rootSeed, label string) *rand.Rand {
	seedValue := DeterministicSeedValue(rootSeed, label)
	return rand.New(rand.NewSource(seedValue))
}

func RandomFloat(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.New(rand.NewSource(DeterministicSeedValue(DefaultSeed, "world"))).Float64()
	}
	return rng.Float64()
}

func RandomAngle(rng *rand.Rand) float64 {
	return RandomFloat(rng) * 2 * math.Pi
}

func RandomDistance(rng *rand.Rand, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + RandomFloat(rng)*(max-min)
}

// RandomUnit returns a direction of length one chosen uniformly by angle.
func RandomUnit(rng *rand.Rand) Vec2 {
	angle := RandomAngle(rng)
	return Vec2{X: math.Cos(angle), Y: math.Sin(angle)}
}

// RandomPoint returns a point inside [margin, w-margin]x[margin, h-margin].
func RandomPoint(rng *rand.Rand, width, height, margin float64) Vec2 {
	return Vec2{
		X: RandomDistance(rng, margin, width-margin),
		Y: RandomDistance(rng, margin, height-margin),
	}
}
