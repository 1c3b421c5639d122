package blend

import "github.com/chewxy/math32"

// separable lifts a per-channel blend B(s, d) on unpremultiplied values to
// a premultiplied Func:
//
//	Result = (1 - Sa)*D + (1 - Da)*S + Sa*Da*B(Sc, Dc)
func separable(b func(s, d byte) byte) Func {
	return func(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
		if sa == 0 {
			return dr, dg, db, da
		}
		if da == 0 {
			return sr, sg, sb, sa
		}
		invSa := 255 - sa
		invDa := 255 - da
		saDa := MulDiv255(sa, da)
		ch := func(s, d byte) byte {
			v := addClamp(MulDiv255(d, invSa), MulDiv255(s, invDa))
			return addClamp(v, MulDiv255(saDa, b(unpremul(s, sa), unpremul(d, da))))
		}
		return ch(sr, dr), ch(sg, dg), ch(sb, db), addClamp(sa, MulDiv255(da, invSa))
	}
}

func unpremul(c, a byte) byte {
	if a == 0 {
		return 0
	}
	v := (uint16(c)*255 + uint16(a)/2) / uint16(a)
	if v > 255 {
		return 255
	}
	return byte(v)
}

func screen(s, d byte) byte {
	return 255 - MulDiv255(255-s, 255-d)
}

// HardLight with the layers swapped.
func overlay(s, d byte) byte {
	return hardLight(d, s)
}

func hardLight(s, d byte) byte {
	if s <= 127 {
		return mul2(s, d)
	}
	return 255 - mul2(255-s, 255-d)
}

// mul2 returns 2*a*b/255, clamped.
func mul2(a, b byte) byte {
	v := (2*uint32(a)*uint32(b) + 127) / 255
	if v > 255 {
		return 255
	}
	return byte(v)
}

func colorDodge(s, d byte) byte {
	if d == 0 {
		return 0
	}
	if s == 255 {
		return 255
	}
	v := uint32(d) * 255 / uint32(255-s)
	if v > 255 {
		return 255
	}
	return byte(v)
}

func colorBurn(s, d byte) byte {
	if d == 255 {
		return 255
	}
	if s == 0 {
		return 0
	}
	v := uint32(255-d) * 255 / uint32(s)
	if v > 255 {
		return 0
	}
	return 255 - byte(v)
}

func softLight(s, d byte) byte {
	sf := float32(s) / 255
	df := float32(d) / 255
	var r float32
	if sf <= 0.5 {
		r = df - (1-2*sf)*df*(1-df)
	} else {
		var dx float32
		if df <= 0.25 {
			dx = ((16*df-12)*df + 4) * df
		} else {
			dx = math32.Sqrt(df)
		}
		r = df + (2*sf-1)*(dx-df)
	}
	return unit(r)
}

func difference(s, d byte) byte {
	if s > d {
		return s - d
	}
	return d - s
}

func exclusion(s, d byte) byte {
	return byte(uint16(s) + uint16(d) - 2*uint16(MulDiv255(s, d)))
}

// unit converts a [0, 1] value to a byte, clamping out-of-range input.
func unit(v float32) byte {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return byte(v*255 + 0.5)
}
