package qoa

// quantTab maps a clamped residual in the range -8..8, offset by +8 for
// indexing, to a 3-bit index into dequantTab. The mapping loses precision
// towards the higher end of the range. The residual zero shares its index
// with the lowest positive value; div rounds away from zero, so only a
// residual of exactly zero is scaled to zero and shares that index.
var quantTab = [17]int32{
	7, 7, 7, 5, 5, 3, 3, 1, // -8..-1
	0, //  0
	0, 2, 2, 4, 4, 6, 6, 6, //  1.. 8
}

// scalefactorTab holds the 16 scalefactors a slice may select from. Like
// the quantized residuals these become less accurate at the higher end;
// the predictor is relied upon to keep residuals within a quarter of the
// 16-bit range, so the top scalefactor of 2048 times the quant range of 8
// covers residuals up to 1<<14.
//
// Computed as scalefactorTab[s] = round(pow(s+1, 2.75)).
var scalefactorTab = [16]int32{
	1, 7, 21, 45, 84, 138, 211, 304, 421, 562, 731, 928, 1157, 1419, 1715, 2048,
}

// reciprocalTab maps each scalefactor to its reciprocal in .16 fixed
// point, so the encoder can scale residuals with a multiplication instead
// of a division.
//
// Computed as reciprocalTab[s] = ((1<<16) + scalefactorTab[s] - 1) / scalefactorTab[s].
var reciprocalTab = [16]int32{
	65536, 9363, 3121, 1457, 781, 475, 311, 216, 156, 117, 90, 71, 57, 47, 39, 32,
}

// dequantTab maps each scalefactor and quantized residual to its unscaled,
// dequantized value. Since div rounds away from zero, the smallest entries
// correspond to 3/4 instead of 1.
//
// Computed as dequantTab[s][q] = round(scalefactorTab[s] * dqt[q]), with
// dqt = {0.75, -0.75, 2.5, -2.5, 4.5, -4.5, 7, -7}.
var dequantTab = [16][8]int32{
	{1, -1, 3, -3, 5, -5, 7, -7},
	{5, -5, 18, -18, 32, -32, 49, -49},
	{16, -16, 53, -53, 95, -95, 147, -147},
	{34, -34, 113, -113, 203, -203, 315, -315},
	{63, -63, 210, -210, 378, -378, 588, -588},
	{104, -104, 345, -345, 621, -621, 966, -966},
	{158, -158, 528, -528, 950, -950, 1477, -1477},
	{228, -228, 760, -760, 1368, -1368, 2128, -2128},
	{316, -316, 1053, -1053, 1895, -1895, 2947, -2947},
	{422, -422, 1405, -1405, 2529, -2529, 3934, -3934},
	{548, -548, 1828, -1828, 3290, -3290, 5117, -5117},
	{696, -696, 2320, -2320, 4176, -4176, 6496, -6496},
	{868, -868, 2893, -2893, 5207, -5207, 8099, -8099},
	{1064, -1064, 3548, -3548, 6386, -6386, 9933, -9933},
	{1286, -1286, 4288, -4288, 7718, -7718, 12005, -12005},
	{1536, -1536, 5120, -5120, 9216, -9216, 14336, -14336},
}
