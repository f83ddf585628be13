package generator

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
)

const (
	// ZipfianConstant is the skew of the zipfian distributions.
	ZipfianConstant = 0.99

	scrambledItemCount = 10_000_000_000

	// scrambledZetan is zeta(scrambledItemCount, ZipfianConstant), precomputed to avoid an O(n) startup.
	scrambledZetan = 26.46902820178302
)

// Zipfian returns values in [lower, upper] where low values are far more popular than high ones,
// following the algorithm of Gray et al., "Quickly Generating Billion-Record Synthetic Databases".
type Zipfian struct {
	base  int64
	items int64
	theta float64
	alpha float64
	zetan float64
	eta   float64
	half  float64
	rnd   Rand
}

// NewZipfian creates a Zipfian generator over [lower, upper] with the default constant.
func NewZipfian(lower, upper int64, rnd Rand) (*Zipfian, error) {
	if upper < lower {
		return nil, fmt.Errorf("zipfian: upper bound %d is below lower bound %d", upper, lower)
	}

	items := upper - lower + 1

	return newZipfian(lower, items, ZipfianConstant, zeta(items, ZipfianConstant), rnd), nil
}

func newZipfian(base, items int64, theta, zetan float64, rnd Rand) *Zipfian {
	zeta2theta := zeta(2, theta)

	return &Zipfian{
		base:  base,
		items: items,
		theta: theta,
		alpha: 1.0 / (1.0 - theta),
		zetan: zetan,
		eta:   (1 - math.Pow(2.0/float64(items), 1-theta)) / (1 - zeta2theta/zetan),
		half:  1 + math.Pow(0.5, theta),
		rnd:   orDefault(rnd),
	}
}

// Next returns the next zipfian distributed value.
func (z *Zipfian) Next() int64 {
	u := z.rnd.Float64()
	uz := u * z.zetan

	if uz < 1.0 {
		return z.base
	}

	if uz < z.half {
		return z.base + 1
	}

	v := z.base + int64(float64(z.items)*math.Pow(z.eta*u-z.eta+1, z.alpha))
	if v > z.base+z.items-1 {
		v = z.base + z.items - 1
	}

	return v
}

func zeta(n int64, theta float64) float64 {
	sum := 0.0
	for i := int64(0); i < n; i++ {
		sum += 1 / math.Pow(float64(i+1), theta)
	}

	return sum
}

// ScrambledZipfian spreads the popular items of a zipfian distribution over the whole keyspace
// by hashing, so popular keys are not clustered at the low end.
type ScrambledZipfian struct {
	lower int64
	items int64
	gen   *Zipfian
}

// NewScrambledZipfian creates a ScrambledZipfian generator over [lower, upper].
func NewScrambledZipfian(lower, upper int64, rnd Rand) (*ScrambledZipfian, error) {
	if upper < lower {
		return nil, fmt.Errorf("scrambled zipfian: upper bound %d is below lower bound %d", upper, lower)
	}

	return &ScrambledZipfian{
		lower: lower,
		items: upper - lower + 1,
		gen:   newZipfian(0, scrambledItemCount, ZipfianConstant, scrambledZetan, rnd),
	}, nil
}

// Next returns the next scrambled zipfian value.
func (s *ScrambledZipfian) Next() int64 {
	return s.lower + fnvHash64(s.gen.Next())%s.items
}

// fnvHash64 is FNV-1a over the little endian bytes of v, folded to a non-negative value.
func fnvHash64(v int64) int64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))

	h := fnv.New64a()
	_, _ = h.Write(buf[:])

	hash := int64(h.Sum64())
	if hash < 0 {
		if hash == math.MinInt64 {
			return math.MaxInt64
		}
		hash = -hash
	}

	return hash
}

// SkewedLatest favors the values most recently handed out by a Counter.
type SkewedLatest struct {
	basis *Counter
	rnd   Rand

	mu    sync.Mutex
	items int64
	gen   *Zipfian
}

// NewSkewedLatest creates a generator skewed towards basis.Last().
func NewSkewedLatest(basis *Counter, rnd Rand) *SkewedLatest {
	return &SkewedLatest{basis: basis, rnd: orDefault(rnd)}
}

// Next returns Last() minus a zipfian offset, so the newest values are the most popular.
func (s *SkewedLatest) Next() int64 {
	latest := s.basis.Last()
	if latest <= 0 {
		return 0
	}

	return latest - s.zipfian(latest).Next()
}

// zipfian returns a generator over [0, items-1], rebuilt when the basis moved.
func (s *SkewedLatest) zipfian(items int64) *Zipfian {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen == nil || s.items != items {
		s.gen = newZipfian(0, items, ZipfianConstant, zeta(items, ZipfianConstant), s.rnd)
		s.items = items
	}

	return s.gen
}
