package matcher

import (
	"errors"
	"fmt"
)

const (
	largeCost = 1000000.0
)

// lapjv holds the working state of the Jonker-Volgenant solver for a dense
// square cost matrix
type lapjv struct {
	n    int
	cost [][]float64
	// x is the column assigned to each row
	x []int
	// y is the row assigned to each column
	y []int
	// v are the column dual prices
	v        []float64
	freeRows []int
}

// solveLAPJV solves the Linear Assignment Problem for a square cost matrix
// and returns the row to column and column to row assignments
func solveLAPJV(cost [][]float64) (rowsol, colsol []int, err error) {

	n := len(cost)

	for i := range cost {
		if len(cost[i]) != n {
			return nil, nil, fmt.Errorf("cost matrix must be square, row %d has %d columns", i, len(cost[i]))
		}
	}

	s := &lapjv{
		n:        n,
		cost:     cost,
		x:        make([]int, n),
		y:        make([]int, n),
		v:        make([]float64, n),
		freeRows: make([]int, n),
	}

	free := s.columnReduction()

	// two rounds of augmenting row reduction as recommended by the JV paper
	for round := 0; free > 0 && round < 2; round++ {
		free = s.rowReduction(free)
	}

	if free > 0 {
		if err := s.augment(free); err != nil {
			return nil, nil, err
		}
	}

	return s.x, s.y, nil
}

// columnReduction performs column reduction and reduction transfer, returning
// the number of rows left unassigned
func (s *lapjv) columnReduction() int {

	n := s.n
	unique := make([]bool, n)

	for i := 0; i < n; i++ {
		s.x[i] = -1
		s.v[i] = largeCost
		s.y[i] = 0
		unique[i] = true
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if c := s.cost[i][j]; c < s.v[j] {
				s.v[j] = c
				s.y[j] = i
			}
		}
	}

	for j := n - 1; j >= 0; j-- {
		i := s.y[j]
		if s.x[i] < 0 {
			s.x[i] = j
		} else {
			unique[i] = false
			s.y[j] = -1
		}
	}

	free := 0

	for i := 0; i < n; i++ {

		if s.x[i] < 0 {
			s.freeRows[free] = i
			free++
			continue
		}

		if !unique[i] {
			continue
		}

		// transfer the reduction to the only column assigned to this row
		j := s.x[i]
		minVal := largeCost

		for j2 := 0; j2 < n; j2++ {
			if j2 == j {
				continue
			}
			if c := s.cost[i][j2] - s.v[j2]; c < minVal {
				minVal = c
			}
		}

		s.v[j] -= minVal
	}

	return free
}

// rowReduction performs augmenting row reduction over the free rows and
// returns the number of rows still free
func (s *lapjv) rowReduction(free int) int {

	n := s.n
	current := 0
	newFree := 0
	iterations := 0

	for current < free {

		iterations++
		freeI := s.freeRows[current]
		current++

		// find the lowest and second lowest reduced cost in the row
		j1 := 0
		v1 := s.cost[freeI][0] - s.v[0]
		j2 := -1
		v2 := largeCost

		for j := 1; j < n; j++ {
			c := s.cost[freeI][j] - s.v[j]
			if c >= v2 {
				continue
			}
			if c >= v1 {
				v2 = c
				j2 = j
			} else {
				v2 = v1
				v1 = c
				j2 = j1
				j1 = j
			}
		}

		i0 := s.y[j1]
		v1New := s.v[j1] - (v2 - v1)
		v1Lowers := v1New < s.v[j1]

		switch {
		case iterations < current*n:
			if v1Lowers {
				s.v[j1] = v1New
			} else if i0 >= 0 && j2 >= 0 {
				j1 = j2
				i0 = s.y[j2]
			}

			if i0 >= 0 {
				if v1Lowers {
					current--
					s.freeRows[current] = i0
				} else {
					s.freeRows[newFree] = i0
					newFree++
				}
			}

		case i0 >= 0:
			s.freeRows[newFree] = i0
			newFree++
		}

		s.x[freeI] = j1
		s.y[j1] = freeI
	}

	return newFree
}

// findMinColumns moves the columns with the minimum d[j] to the front of
// the todo part of cols and returns the new end of the scan list
func (s *lapjv) findMinColumns(lo int, d []float64, cols []int) int {

	hi := lo + 1
	mind := d[cols[lo]]

	for k := hi; k < s.n; k++ {
		j := cols[k]

		if d[j] > mind {
			continue
		}

		if d[j] < mind {
			hi = lo
			mind = d[j]
		}

		cols[k] = cols[hi]
		cols[hi] = j
		hi++
	}

	return hi
}

// scanColumns scans the todo columns using the columns on the scan list,
// returning an unassigned column reached at minimum distance or -1
func (s *lapjv) scanColumns(lo, hi *int, d []float64, cols, pred []int) int {

	for *lo != *hi {

		j := cols[*lo]
		*lo++
		i := s.y[j]
		mind := d[j]
		h := s.cost[i][j] - s.v[j] - mind

		for k := *hi; k < s.n; k++ {
			j = cols[k]
			cred := s.cost[i][j] - s.v[j] - h

			if cred >= d[j] {
				continue
			}

			d[j] = cred
			pred[j] = i

			if cred == mind {
				if s.y[j] < 0 {
					return j
				}

				cols[k] = cols[*hi]
				cols[*hi] = j
				*hi++
			}
		}
	}

	return -1
}

// shortestPath runs one modified Dijkstra search from startI and returns the
// unassigned column that ends the augmenting path
func (s *lapjv) shortestPath(startI int, pred []int) int {

	n := s.n
	lo, hi := 0, 0
	finalJ := -1
	ready := 0
	cols := make([]int, n)
	d := make([]float64, n)

	for j := 0; j < n; j++ {
		cols[j] = j
		pred[j] = startI
		d[j] = s.cost[startI][j] - s.v[j]
	}

	for finalJ == -1 {
		// scan list is empty, refill with the columns at minimum distance
		if lo == hi {
			ready = lo
			hi = s.findMinColumns(lo, d, cols)

			for k := lo; k < hi; k++ {
				if j := cols[k]; s.y[j] < 0 {
					finalJ = j
				}
			}
		}

		if finalJ == -1 {
			finalJ = s.scanColumns(&lo, &hi, d, cols, pred)
		}
	}

	mind := d[cols[lo]]

	for k := 0; k < ready; k++ {
		j := cols[k]
		s.v[j] += d[j] - mind
	}

	return finalJ
}

// augment assigns the remaining free rows along shortest augmenting paths
func (s *lapjv) augment(free int) error {

	pred := make([]int, s.n)

	for _, freeI := range s.freeRows[:free] {

		j := s.shortestPath(freeI, pred)

		if j < 0 || j >= s.n {
			return fmt.Errorf("augmenting path search returned column %d", j)
		}

		i := -1

		for steps := 0; i != freeI; steps++ {
			if steps >= s.n {
				return errors.New("augmenting path longer than the matrix")
			}

			i = pred[j]
			s.y[j] = i
			j, s.x[i] = s.x[i], j
		}
	}

	return nil
}
