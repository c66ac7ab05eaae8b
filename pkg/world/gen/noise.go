package gen

import (
	"math"
	"sync"
)

const (
	fbmOctaves     = 6
	fbmFrequency   = 1.0
	fbmLacunarity  = 2.0
	fbmPersistence = 0.5

	heightmapFrequency = 0.01
	caveFrequency      = 0.05
)

// NoiseGenerator produces deterministic Perlin noise and random draws from a seed.
// Noise sampling is safe for concurrent use; the shared Random* stream is
// serialized by a mutex.
type NoiseGenerator struct {
	seed    int64
	perm    *[512]int
	octaves [fbmOctaves]*[512]int

	mu  sync.Mutex
	rng *Rand
}

// NewNoiseGenerator creates a noise generator with seeded permutation tables.
func NewNoiseGenerator(seed int64) *NoiseGenerator {
	ng := &NoiseGenerator{
		seed: seed,
		perm: newPermutation(seed),
		rng:  NewRand(mixSeed(seed, saltShared)),
	}
	for i := range ng.octaves {
		ng.octaves[i] = newPermutation(seed + int64(i))
	}
	return ng
}

func newPermutation(seed int64) *[512]int {
	var p [256]int
	for i := range p {
		p[i] = i
	}

	// Fisher-Yates shuffle with seed-derived random.
	s := seed
	for i := 255; i > 0; i-- {
		s = s*6364136223846793005 + 1442695040888963407 // LCG
		j := int((s>>33)&0x7FFFFFFF) % (i + 1)
		p[i], p[j] = p[j], p[i]
	}

	var perm [512]int
	for i := range perm {
		perm[i] = p[i&255]
	}
	return &perm
}

// Seed returns the seed the generator was built from.
func (ng *NoiseGenerator) Seed() int64 { return ng.seed }

// RandomInt returns a value in [lo, hi] from the shared stream.
func (ng *NoiseGenerator) RandomInt(lo, hi int) int {
	ng.mu.Lock()
	defer ng.mu.Unlock()
	return ng.rng.IntRange(lo, hi)
}

// RandomFloat returns a value in [lo, hi] from the shared stream.
func (ng *NoiseGenerator) RandomFloat(lo, hi float64) float64 {
	ng.mu.Lock()
	defer ng.mu.Unlock()
	return ng.rng.FloatRange(lo, hi)
}

// RandomBool returns true with probability p from the shared stream.
func (ng *NoiseGenerator) RandomBool(p float64) bool {
	ng.mu.Lock()
	defer ng.mu.Unlock()
	return ng.rng.Bool(p)
}

// ChunkRand returns a stream that depends only on the seed and the chunk coordinate.
func (ng *NoiseGenerator) ChunkRand(x, y, z int) *Rand {
	return NewRand(mixSeed(ng.seed, saltChunk, x, y, z))
}

// ColumnRand returns a stream that depends only on the seed and the world column.
func (ng *NoiseGenerator) ColumnRand(wx, wz int) *Rand {
	return NewRand(mixSeed(ng.seed, saltColumn, wx, wz))
}

// Perlin2D returns single-octave noise in [-1, 1].
func (ng *NoiseGenerator) Perlin2D(x, z float64) float64 {
	return perlin2(ng.perm, x, z)
}

// Perlin3D returns single-octave noise in [-1, 1].
func (ng *NoiseGenerator) Perlin3D(x, y, z float64) float64 {
	return perlin3(ng.perm, x, y, z)
}

// FBM2D layers six octaves of 2D noise, each with its own permutation.
// The result is normalized to [-1, 1].
func (ng *NoiseGenerator) FBM2D(x, z float64) float64 {
	var total, norm float64
	freq, amp := fbmFrequency, 1.0
	for _, p := range ng.octaves {
		total += perlin2(p, x*freq, z*freq) * amp
		norm += amp
		freq *= fbmLacunarity
		amp *= fbmPersistence
	}
	return total / norm
}

// FBM3D layers six octaves of 3D noise.
func (ng *NoiseGenerator) FBM3D(x, y, z float64) float64 {
	var total, norm float64
	freq, amp := fbmFrequency, 1.0
	for _, p := range ng.octaves {
		total += perlin3(p, x*freq, y*freq, z*freq) * amp
		norm += amp
		freq *= fbmLacunarity
		amp *= fbmPersistence
	}
	return total / norm
}

// SurfaceHeight returns the terrain height of world column (wx, wz).
func (ng *NoiseGenerator) SurfaceHeight(wx, wz int, scale float64) int {
	n := ng.FBM2D(float64(wx)*scale*heightmapFrequency, float64(wz)*scale*heightmapFrequency)
	return int(math.Round((n+1)*30)) + 64
}

// Heightmap returns surface heights for the chunk column, indexed [x][z].
func (ng *NoiseGenerator) Heightmap(chunkX, chunkZ int, scale float64) [16][16]int {
	var hm [16][16]int
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			hm[x][z] = ng.SurfaceHeight(chunkX*16+x, chunkZ*16+z, scale)
		}
	}
	return hm
}

// CaveNoise samples 3D noise for every cell of the chunk, indexed [x][y][z].
func (ng *NoiseGenerator) CaveNoise(chunkX, chunkY, chunkZ int, scale float64) *[16][16][16]float64 {
	var out [16][16][16]float64
	f := scale * caveFrequency
	for x := 0; x < 16; x++ {
		wx := float64(chunkX*16 + x)
		for y := 0; y < 16; y++ {
			wy := float64(chunkY*16 + y)
			for z := 0; z < 16; z++ {
				wz := float64(chunkZ*16 + z)
				out[x][y][z] = ng.Perlin3D(wx*f, wy*f, wz*f)
			}
		}
	}
	return &out
}

func perlin2(p *[512]int, x, y float64) float64 {
	fx, fy := math.Floor(x), math.Floor(y)
	xi, yi := int(fx)&255, int(fy)&255
	x -= fx
	y -= fy
	u, v := fade(x), fade(y)

	aa := p[p[xi]+yi]
	ab := p[p[xi]+yi+1]
	ba := p[p[xi+1]+yi]
	bb := p[p[xi+1]+yi+1]

	n := lerp(v,
		lerp(u, grad2(aa, x, y), grad2(ba, x-1, y)),
		lerp(u, grad2(ab, x, y-1), grad2(bb, x-1, y-1)))
	return clamp(n)
}

func perlin3(p *[512]int, x, y, z float64) float64 {
	fx, fy, fz := math.Floor(x), math.Floor(y), math.Floor(z)
	xi, yi, zi := int(fx)&255, int(fy)&255, int(fz)&255
	x -= fx
	y -= fy
	z -= fz
	u, v, w := fade(x), fade(y), fade(z)

	a := p[xi] + yi
	aa, ab := p[a]+zi, p[a+1]+zi
	b := p[xi+1] + yi
	ba, bb := p[b]+zi, p[b+1]+zi

	n := lerp(w,
		lerp(v,
			lerp(u, grad3(p[aa], x, y, z), grad3(p[ba], x-1, y, z)),
			lerp(u, grad3(p[ab], x, y-1, z), grad3(p[bb], x-1, y-1, z))),
		lerp(v,
			lerp(u, grad3(p[aa+1], x, y, z-1), grad3(p[ba+1], x-1, y, z-1)),
			lerp(u, grad3(p[ab+1], x, y-1, z-1), grad3(p[bb+1], x-1, y-1, z-1))))
	return clamp(n)
}

func fade(t float64) float64 { return t * t * t * (t*(t*6-15) + 10) }

func lerp(t, a, b float64) float64 { return a + t*(b-a) }

func grad2(hash int, x, y float64) float64 {
	switch hash & 7 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	case 3:
		return -x - y
	case 4:
		return x
	case 5:
		return -x
	case 6:
		return y
	default:
		return -y
	}
}

func grad3(hash int, x, y, z float64) float64 {
	h := hash & 15
	u := y
	if h < 8 {
		u = x
	}
	v := z
	switch {
	case h < 4:
		v = y
	case h == 12 || h == 14:
		v = x
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}

func clamp(n float64) float64 {
	return math.Max(-1, math.Min(1, n))
}
