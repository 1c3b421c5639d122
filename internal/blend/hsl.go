package blend

import "github.com/chewxy/math32"

// Non-separable modes operate on the whole RGB triplet, following section
// 8 of the W3C compositing model. Colors are unpremultiplied floats in
// [0, 1].

type rgb struct{ r, g, b float32 }

func lum(c rgb) float32 {
	return 0.30*c.r + 0.59*c.g + 0.11*c.b
}

func sat(c rgb) float32 {
	return math32.Max(c.r, math32.Max(c.g, c.b)) - math32.Min(c.r, math32.Min(c.g, c.b))
}

func clipColor(c rgb) rgb {
	l := lum(c)
	n := math32.Min(c.r, math32.Min(c.g, c.b))
	x := math32.Max(c.r, math32.Max(c.g, c.b))
	if n < 0 {
		c = rgb{l + (c.r-l)*l/(l-n), l + (c.g-l)*l/(l-n), l + (c.b-l)*l/(l-n)}
	}
	if x > 1 {
		c = rgb{l + (c.r-l)*(1-l)/(x-l), l + (c.g-l)*(1-l)/(x-l), l + (c.b-l)*(1-l)/(x-l)}
	}
	return c
}

func setLum(c rgb, l float32) rgb {
	d := l - lum(c)
	return clipColor(rgb{c.r + d, c.g + d, c.b + d})
}

func setSat(c rgb, s float32) rgb {
	ch := [3]*float32{&c.r, &c.g, &c.b}
	// sort pointers by value: ch[0] min, ch[2] max
	if *ch[0] > *ch[1] {
		ch[0], ch[1] = ch[1], ch[0]
	}
	if *ch[1] > *ch[2] {
		ch[1], ch[2] = ch[2], ch[1]
	}
	if *ch[0] > *ch[1] {
		ch[0], ch[1] = ch[1], ch[0]
	}
	lo, mid, hi := *ch[0], *ch[1], *ch[2]
	if hi > lo {
		*ch[1] = (mid - lo) * s / (hi - lo)
		*ch[2] = s
	} else {
		*ch[1], *ch[2] = 0, 0
	}
	*ch[0] = 0
	return c
}

func hue(s, d rgb) rgb        { return setLum(setSat(s, sat(d)), lum(d)) }
func saturation(s, d rgb) rgb { return setLum(setSat(d, sat(s)), lum(d)) }
func colorMode(s, d rgb) rgb  { return setLum(s, lum(d)) }
func luminosity(s, d rgb) rgb { return setLum(d, lum(s)) }

func nonSeparable(b func(s, d rgb) rgb) Func {
	return func(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
		if sa == 0 {
			return dr, dg, db, da
		}
		if da == 0 {
			return sr, sg, sb, sa
		}
		toRGB := func(r, g, b, a byte) rgb {
			af := float32(a)
			return rgb{float32(r) / af, float32(g) / af, float32(b) / af}
		}
		mix := b(toRGB(sr, sg, sb, sa), toRGB(dr, dg, db, da))
		invSa := 255 - sa
		invDa := 255 - da
		saDa := MulDiv255(sa, da)
		ch := func(s, d byte, m float32) byte {
			v := addClamp(MulDiv255(d, invSa), MulDiv255(s, invDa))
			return addClamp(v, MulDiv255(saDa, unit(m)))
		}
		return ch(sr, dr, mix.r), ch(sg, dg, mix.g), ch(sb, db, mix.b), addClamp(sa, MulDiv255(da, invSa))
	}
}
