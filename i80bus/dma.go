// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i80bus

// maxDMALen is the payload limit of a single DMA descriptor.
const maxDMALen = 4096 - 4

// dmaDesc is one entry of the scatter-gather descriptor chain.
type dmaDesc struct {
	buf  []byte
	next *dmaDesc
}

// allocDMADesc resizes the descriptor table.
func (b *Bus) allocDMADesc(n int) {
	b.dmadesc = make([]dmaDesc, n)
}

// setupDMADescLinks fills the descriptor chain for data.
//
// TODO: chain more than one descriptor; transfers beyond maxDMALen are
// currently truncated and large pushes must go through PushPixels.
func (b *Bus) setupDMADescLinks(data []byte) {
	if len(b.dmadesc) == 0 {
		b.allocDMADesc(1)
	}
	n := len(data)
	if n > maxDMALen {
		n = maxDMALen
	}
	b.dmadesc[0] = dmaDesc{buf: data[:n]}
}
