package sidefec

import "sync"

// GF(256) arithmetic using log/antilog tables with primitive polynomial 0x11d.

var (
	gfExp  [512]byte
	gfLog  [256]byte
	gfOnce sync.Once
)

func gfInit() {
	// generator = 0x02
	x := 1
	for i := 0; i < 255; i++ {
		gfExp[i] = byte(x)
		gfLog[byte(x)] = byte(i)
		x <<= 1
		if x&0x100 != 0 {
			x ^= 0x11d
		}
	}
	for i := 255; i < 512; i++ {
		gfExp[i] = gfExp[i-255]
	}
}

func gfMul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	gfOnce.Do(gfInit)
	return gfExp[int(gfLog[a])+int(gfLog[b])]
}

func gfInv(a byte) byte {
	if a == 0 {
		return 0
	}
	gfOnce.Do(gfInit)
	return gfExp[255-int(gfLog[a])]
}

// alphaPow returns generator^e, with e mod 255.
func alphaPow(e int) byte {
	gfOnce.Do(gfInit)
	e %= 255
	if e < 0 {
		e += 255
	}
	return gfExp[e]
}

// mulAdd computes dst ^= a*src.
func mulAdd(dst, src []byte, a byte) {
	if a == 0 {
		return
	}
	for i := 0; i < len(dst) && i < len(src); i++ {
		if a == 1 {
			dst[i] ^= src[i]
		} else {
			dst[i] ^= gfMul(a, src[i])
		}
	}
}

// invertMatrix inverts a square matrix by Gauss-Jordan elimination.
func invertMatrix(a [][]byte) ([][]byte, bool) {
	n := len(a)
	aug := make([][]byte, n)
	for i := 0; i < n; i++ {
		aug[i] = make([]byte, 2*n)
		copy(aug[i][:n], a[i])
		aug[i][n+i] = 1
	}
	row := 0
	for col := 0; col < n && row < n; col++ {
		pivot := -1
		for r := row; r < n; r++ {
			if aug[r][col] != 0 {
				pivot = r
				break
			}
		}
		if pivot == -1 {
			continue
		}
		aug[row], aug[pivot] = aug[pivot], aug[row]
		inv := gfInv(aug[row][col])
		for j := range aug[row] {
			aug[row][j] = gfMul(aug[row][j], inv)
		}
		for r := 0; r < n; r++ {
			if r == row || aug[r][col] == 0 {
				continue
			}
			mulAdd(aug[r], aug[row], aug[r][col])
		}
		row++
	}
	if row < n {
		return nil, false
	}
	out := make([][]byte, n)
	for i := range out {
		out[i] = append([]byte(nil), aug[i][n:]...)
	}
	return out, true
}
