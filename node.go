// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lcrq

import "code.hybscloud.com/atomix"

// empty is the reserved payload meaning no value is present.
//
// Storing the occupancy signal inside the payload word keeps a slot a
// single 128-bit entry, so one double-width CAS commits an enqueue or a
// dequeue. The cost is that callers cannot enqueue zero; this is part of
// the package ABI.
const empty uint64 = 0

// slot is one ring cell.
//
// Entry format: [lo = safe-bit | 63-bit index, hi = value]
//
// The index identifies which logical ring position the cell currently
// represents; each successful dequeue advances it by the ring size. The
// safe bit records that no racing consumer has claimed a position past
// this cell while it was still empty; once cleared, producers must prove
// via the head counter that they are not stealing a consumed position.
//
// Memory: 16 bytes of state padded to a cache line.
type slot struct {
	entry atomix.Uint128 // lo=safe|index, hi=value
	_     [64 - 16]byte  // Pad to cache line
}
