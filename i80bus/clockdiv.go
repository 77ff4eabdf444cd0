// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i80bus

import "math"

// ClockDiv is a fractional clock divider: the peripheral clock is divided
// by (N + B/A) * Cnt to approximate the target bus frequency.
type ClockDiv struct {
	A   uint32
	B   uint32
	N   uint32
	Cnt uint32
}

// CalcClockDiv searches the divider space for the closest match to
// targetFreq given baseClock. The search walks candidate cycle counts
// downward and fractional numerators from coarse to fine, stopping early
// on an exact hit.
func CalcClockDiv(baseClock, targetFreq uint32) ClockDiv {
	d := ClockDiv{A: 63, B: 62, N: 256, Cnt: 64}
	diff := uint32(math.MaxInt32)
	startCnt := baseClock/(targetFreq*2) + 1
	if startCnt > 64 {
		startCnt = 64
	}
	endCnt := baseClock / 256 / targetFreq
	if endCnt < 2 {
		endCnt = 2
	}
	if startCnt <= 2 {
		endCnt = 1
	}
	for cnt := startCnt; diff != 0 && cnt >= endCnt; cnt-- {
		fdiv := float32(baseClock) / float32(cnt) / float32(targetFreq)
		n := uint32(fdiv)
		if n < 2 {
			n = 2
		}
		fdiv -= float32(n)
		if fdiv < 0 {
			fdiv = 0
		}

		for a := uint32(63); diff != 0 && a > 0; a-- {
			b := uint32(math.Round(float64(fdiv) * float64(a)))
			if a == b && n == 256 {
				break
			}
			freq := uint32(float32(baseClock) / (float32(n*cnt) + float32(b*cnt)/float32(a)))
			var dd uint32
			if targetFreq > freq {
				dd = targetFreq - freq
			} else {
				dd = freq - targetFreq
			}
			if diff <= dd {
				continue
			}
			diff = dd
			d.Cnt = cnt
			d.N = n
			d.B = b
			d.A = a
			if b == 0 || a == b {
				break
			}
		}
	}
	if d.A == d.B {
		d.B = 0
		d.N++
	}
	return d
}

// Freq returns the bus frequency the divider produces from baseClock.
func (d ClockDiv) Freq(baseClock uint32) uint32 {
	return uint32(float64(baseClock) / ((float64(d.N) + float64(d.B)/float64(d.A)) * float64(d.Cnt)))
}
