package sidefec

import "errors"

// Systematic Reed-Solomon over GF(256) with a Vandermonde construction.
// Source symbol k sits at evaluation point alpha^k; repair symbol j at
// alpha^(K+j). Coefficients are normalised so the first K rows are the identity.

type rsCode struct {
	k, r int
	invV [][]byte
}

func newRSCode(k, r int) (*rsCode, error) {
	if k <= 0 || r < 0 {
		return nil, errors.New("bad K,R")
	}
	if k+r > 255 {
		return nil, errors.New("RS over GF(256) requires N<=255")
	}
	vsys := make([][]byte, k)
	for i := range vsys {
		vsys[i] = vandermondeRow(alphaPow(i), k)
	}
	invV, ok := invertMatrix(vsys)
	if !ok {
		return nil, errors.New("vsys not invertible")
	}
	return &rsCode{k: k, r: r, invV: invV}, nil
}

func vandermondeRow(x byte, k int) []byte {
	row := make([]byte, k)
	pow := byte(1)
	for c := range row {
		row[c] = pow
		pow = gfMul(pow, x)
	}
	return row
}

// coefficients returns the combination of source symbols forming symbol id.
func (c *rsCode) coefficients(id int) []byte {
	out := make([]byte, c.k)
	if id < c.k {
		out[id] = 1
		return out
	}
	rowV := vandermondeRow(alphaPow(id), c.k)
	for k := 0; k < c.k; k++ {
		var acc byte
		for t := 0; t < c.k; t++ {
			acc ^= gfMul(rowV[t], c.invV[t][k])
		}
		out[k] = acc
	}
	return out
}

// encode returns the r repair symbols for k equally sized source symbols.
func (c *rsCode) encode(src [][]byte) []Packet {
	l := len(src[0])
	out := make([]Packet, c.r)
	for j := range out {
		y := make([]byte, l)
		for k, a := range c.coefficients(c.k + j) {
			mulAdd(y, src[k], a)
		}
		out[j] = Packet{Index: c.k + j, Data: y}
	}
	return out
}

// decode solves for the source symbols from any k distinct received symbols.
func (c *rsCode) decode(recv []Packet) ([][]byte, error) {
	type row struct {
		vec  []byte
		data []byte
	}
	rows := make([]row, 0, c.k)
	seen := make(map[int]bool)
	for _, p := range recv {
		if p.Index < 0 || p.Index >= c.k+c.r || seen[p.Index] {
			continue
		}
		seen[p.Index] = true
		rows = append(rows, row{c.coefficients(p.Index), append([]byte(nil), p.Data...)})
		if len(rows) == c.k {
			break
		}
	}
	if len(rows) < c.k {
		return nil, ErrTooFewSymbols
	}
	for col := 0; col < c.k; col++ {
		pr := -1
		for i := col; i < c.k; i++ {
			if rows[i].vec[col] != 0 {
				pr = i
				break
			}
		}
		if pr == -1 {
			return nil, errors.New("singular symbol set")
		}
		rows[col], rows[pr] = rows[pr], rows[col]
		inv := gfInv(rows[col].vec[col])
		for j := range rows[col].vec {
			rows[col].vec[j] = gfMul(rows[col].vec[j], inv)
		}
		for j := range rows[col].data {
			rows[col].data[j] = gfMul(rows[col].data[j], inv)
		}
		for i := 0; i < c.k; i++ {
			a := rows[i].vec[col]
			if i == col || a == 0 {
				continue
			}
			mulAdd(rows[i].vec, rows[col].vec, a)
			mulAdd(rows[i].data, rows[col].data, a)
		}
	}
	out := make([][]byte, c.k)
	for i := range out {
		out[i] = rows[i].data
	}
	return out, nil
}
