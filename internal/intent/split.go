package intent

import (
	"fmt"
	"math"
	"math/rand"
)

// SplitSizes returns the test and train row counts for n rows: the test
// side is rounded up
func SplitSizes(n int, testSize float64) (nTrain, nTest int) {
	nTest = int(math.Ceil(float64(n) * testSize))
	return n - nTest, nTest
}

// trainTestSplit shuffles 0..n-1 with a seeded permutation; the first nTest
// positions form the test set
func trainTestSplit(n int, testSize float64, seed int64) (train, test []int, err error) {
	nTrain, nTest := SplitSizes(n, testSize)
	if nTest == 0 || nTrain == 0 {
		return nil, nil, fmt.Errorf("test_size=%v with %d rows leaves an empty split", testSize, n)
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}
