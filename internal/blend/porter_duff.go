package blend

func clearAll(_, _, _, _, _, _, _, _ byte) (byte, byte, byte, byte) {
	return 0, 0, 0, 0
}

func source(sr, sg, sb, sa, _, _, _, _ byte) (byte, byte, byte, byte) {
	return sr, sg, sb, sa
}

func destination(_, _, _, _, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return dr, dg, db, da
}

// S + D*(1-Sa)
func sourceOver(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	inv := 255 - sa
	return addClamp(sr, MulDiv255(dr, inv)),
		addClamp(sg, MulDiv255(dg, inv)),
		addClamp(sb, MulDiv255(db, inv)),
		addClamp(sa, MulDiv255(da, inv))
}

// S*(1-Da) + D
func destinationOver(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return sourceOver(dr, dg, db, da, sr, sg, sb, sa)
}

// S*Da
func sourceIn(sr, sg, sb, sa, _, _, _, da byte) (byte, byte, byte, byte) {
	return MulDiv255(sr, da), MulDiv255(sg, da), MulDiv255(sb, da), MulDiv255(sa, da)
}

// D*Sa
func destinationIn(_, _, _, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return MulDiv255(dr, sa), MulDiv255(dg, sa), MulDiv255(db, sa), MulDiv255(da, sa)
}

// S*(1-Da)
func sourceOut(sr, sg, sb, sa, _, _, _, da byte) (byte, byte, byte, byte) {
	inv := 255 - da
	return MulDiv255(sr, inv), MulDiv255(sg, inv), MulDiv255(sb, inv), MulDiv255(sa, inv)
}

// D*(1-Sa)
func destinationOut(_, _, _, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	inv := 255 - sa
	return MulDiv255(dr, inv), MulDiv255(dg, inv), MulDiv255(db, inv), MulDiv255(da, inv)
}

// S*Da + D*(1-Sa), alpha Da
func sourceAtop(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	inv := 255 - sa
	return addClamp(MulDiv255(sr, da), MulDiv255(dr, inv)),
		addClamp(MulDiv255(sg, da), MulDiv255(dg, inv)),
		addClamp(MulDiv255(sb, da), MulDiv255(db, inv)),
		da
}

// S*(1-Da) + D*Sa, alpha Sa
func destinationAtop(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return sourceAtop(dr, dg, db, da, sr, sg, sb, sa)
}

// S*(1-Da) + D*(1-Sa)
func xor(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	invDa := 255 - da
	invSa := 255 - sa
	return addClamp(MulDiv255(sr, invDa), MulDiv255(dr, invSa)),
		addClamp(MulDiv255(sg, invDa), MulDiv255(dg, invSa)),
		addClamp(MulDiv255(sb, invDa), MulDiv255(db, invSa)),
		addClamp(MulDiv255(sa, invDa), MulDiv255(da, invSa))
}

func plus(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return addClamp(sr, dr), addClamp(sg, dg), addClamp(sb, db), addClamp(sa, da)
}

func modulate(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return MulDiv255(sr, dr), MulDiv255(sg, dg), MulDiv255(sb, db), MulDiv255(sa, da)
}
