// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lcrq

// flagBit is the high bit of a packed flag+counter word.
//
// Two places use this packing: the ring's tail word (flag = ring closed)
// and each slot's index word (flag = slot safe). Keeping the flag and the
// 63-bit counter in one word means a single 64-bit atomic covers both,
// and a fetch-add on the counter carries the flag along for free.
const flagBit = uint64(1) << 63

// packFlag63 combines a flag and a 63-bit counter into one word.
func packFlag63(flag bool, value uint64) uint64 {
	if flag {
		return value | flagBit
	}
	return value &^ flagBit
}

// splitFlag63 is the inverse of packFlag63, from a single word read.
func splitFlag63(w uint64) (flag bool, value uint64) {
	return w&flagBit != 0, w &^ flagBit
}

// flag63Value extracts the counter bits of a packed word.
func flag63Value(w uint64) uint64 {
	return w &^ flagBit
}
