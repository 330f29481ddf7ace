// soundmon_waves.go - SoundMon built-in synth waveforms

package formatsynth

// SoundMonWaveNames labels the 16 built-in waveforms for host UIs.
var SoundMonWaveNames = [SM_NUM_WAVES]string{
	"sawtooth", "square", "triangle", "sine",
	"noise", "pulse25", "pulse75", "rampup",
	"softsine", "doublesaw", "organ", "clavinet",
	"wobble", "buzzy", "reed", "pluck",
}

// SoundMonWaves holds the 16 built-in 64-sample waveforms selected by the
// low nibble of instrument byte 1. The noise shape is a fixed pattern, not
// generated, so playback is reproducible.
var SoundMonWaves = [SM_NUM_WAVES][SM_WAVE_LEN]int8{
	// 0: Sawtooth (ramp down)
	{127, 123, 119, 115, 111, 107, 103, 99, 95, 91, 87, 83, 79, 75, 71, 67,
		63, 59, 55, 51, 47, 43, 39, 35, 31, 27, 23, 19, 15, 11, 7, 3,
		-1, -5, -9, -13, -17, -21, -25, -29, -33, -37, -41, -45, -49, -53, -57, -61,
		-65, -69, -73, -77, -81, -85, -89, -93, -97, -101, -105, -109, -113, -117, -121, -125},
	// 1: Square (50% duty cycle)
	{127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127,
		127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127,
		-128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128,
		-128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128},
	// 2: Triangle
	{0, 8, 16, 24, 32, 40, 48, 56, 64, 72, 80, 88, 96, 104, 112, 120,
		127, 120, 112, 104, 96, 88, 80, 72, 64, 56, 48, 40, 32, 24, 16, 8,
		0, -8, -16, -24, -32, -40, -48, -56, -64, -72, -80, -88, -96, -104, -112, -120,
		-128, -120, -112, -104, -96, -88, -80, -72, -64, -56, -48, -40, -32, -24, -16, -8},
	// 3: Sine (piecewise approximation)
	{0, 12, 25, 37, 49, 60, 71, 81, 90, 98, 106, 112, 117, 122, 125, 127,
		127, 125, 122, 117, 112, 106, 98, 90, 81, 71, 60, 49, 37, 25, 12, 0,
		-12, -25, -37, -49, -60, -71, -81, -90, -98, -106, -112, -117, -122, -125, -127, -127,
		-127, -125, -122, -117, -112, -106, -98, -90, -81, -71, -60, -49, -37, -25, -12, -1},
	// 4: Noise (fixed pseudo-random pattern)
	{45, -67, 23, 112, -89, 34, -12, 78, -56, 91, -23, 67, -44, 99, -78, 55,
		-33, 88, -11, 102, -44, 77, -22, 66, -88, 33, -77, 22, -99, 44, -55, 88,
		-66, 11, -102, 44, -77, 22, -66, 88, -33, 77, -22, 99, -44, 55, -88, 33,
		66, -11, 102, -44, 77, -22, 66, -88, 33, -77, 22, -99, 44, -55, 88, -66},
	// 5: Pulse 25%
	{127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127,
		-128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128,
		-128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128,
		-128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128},
	// 6: Pulse 75%
	{127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127,
		127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127,
		127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127, 127,
		-128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128, -128},
	// 7: Ramp up (reverse sawtooth)
	{-128, -124, -120, -116, -112, -108, -104, -100, -96, -92, -88, -84, -80, -76, -72, -68,
		-64, -60, -56, -52, -48, -44, -40, -36, -32, -28, -24, -20, -16, -12, -8, -4,
		0, 4, 8, 12, 16, 20, 24, 28, 32, 36, 40, 44, 48, 52, 56, 60,
		64, 68, 72, 76, 80, 84, 88, 92, 96, 100, 104, 108, 112, 116, 120, 124},
	// 8: Soft sine (rounded)
	{0, 6, 12, 19, 25, 31, 37, 43, 48, 53, 58, 63, 67, 71, 74, 77,
		79, 80, 80, 79, 77, 74, 71, 67, 63, 58, 53, 48, 43, 37, 31, 25,
		19, 12, 6, 0, -6, -12, -19, -25, -31, -37, -43, -48, -53, -58, -63, -67,
		-71, -74, -77, -79, -80, -80, -79, -77, -74, -71, -67, -63, -58, -53, -48, -43},
	// 9: Double saw
	{127, 115, 103, 91, 79, 67, 55, 43, 31, 19, 7, -5, -17, -29, -41, -53,
		-65, -77, -89, -101, -113, -125, -125, -113, -101, -89, -77, -65, -53, -41, -29, -17,
		-5, 7, 19, 31, 43, 55, 67, 79, 91, 103, 115, 127, 115, 103, 91, 79,
		67, 55, 43, 31, 19, 7, -5, -17, -29, -41, -53, -65, -77, -89, -101, -113},
	// 10: Organ
	{0, 20, 38, 54, 67, 76, 81, 82, 79, 72, 62, 49, 33, 16, -1, -18,
		-35, -50, -62, -71, -77, -79, -77, -71, -62, -50, -35, -18, -1, 16, 33, 49,
		62, 72, 79, 82, 81, 76, 67, 54, 38, 20, 0, -20, -38, -54, -67, -76,
		-81, -82, -79, -72, -62, -49, -33, -16, 1, 18, 35, 50, 62, 71, 77, 79},
	// 11: Clavinet (sharp attack transient)
	{127, 90, 63, 44, 31, 22, 15, 11, 7, 5, 3, 2, 1, 1, 0, 0,
		0, -1, -1, -2, -3, -5, -7, -11, -15, -22, -31, -44, -63, -90, -127, -90,
		-63, -44, -31, -22, -15, -11, -7, -5, -3, -2, -1, -1, 0, 0, 0, 1,
		1, 2, 3, 5, 7, 11, 15, 22, 31, 44, 63, 90, 127, 90, 63, 44},
	// 12: Wobble (saw plus sub-oscillator)
	{64, 68, 72, 76, 80, 84, 88, 92, 96, 100, 104, 108, 112, 116, 120, 124,
		-128, -114, -100, -86, -72, -58, -44, -30, -16, -2, 12, 26, 40, 54, 68, 82,
		96, 82, 68, 54, 40, 26, 12, -2, -16, -30, -44, -58, -72, -86, -100, -114,
		-128, 124, 120, 116, 112, 108, 104, 100, 96, 92, 88, 84, 80, 76, 72, 68},
	// 13: Buzzy (odd harmonics)
	{0, 48, 80, 96, 80, 48, 0, -48, -80, -96, -80, -48, 0, 48, 80, 96,
		80, 48, 0, -48, -80, -96, -80, -48, 0, 48, 80, 96, 80, 48, 0, -48,
		-80, -96, -80, -48, 0, 48, 80, 96, 80, 48, 0, -48, -80, -96, -80, -48,
		0, 48, 80, 96, 80, 48, 0, -48, -80, -96, -80, -48, 0, 48, 80, 96},
	// 14: Reed (clarinet-like)
	{0, 25, 49, 70, 86, 96, 99, 94, 82, 63, 38, 10, -20, -49, -73, -90,
		-99, -99, -90, -73, -49, -20, 10, 38, 63, 82, 94, 99, 96, 86, 70, 49,
		25, 0, -25, -49, -70, -86, -96, -99, -94, -82, -63, -38, -10, 20, 49, 73,
		90, 99, 99, 90, 73, 49, 20, -10, -38, -63, -82, -94, -99, -96, -86, -70},
	// 15: Pluck (sharp onset, fast decay)
	{127, 108, 91, 76, 64, 53, 44, 36, 29, 23, 18, 14, 10, 7, 5, 3,
		1, 0, -2, -3, -5, -7, -10, -14, -18, -23, -29, -36, -44, -53, -64, -76,
		-91, -76, -64, -53, -44, -36, -29, -23, -18, -14, -10, -7, -5, -3, -1, 0,
		2, 3, 5, 7, 10, 14, 18, 23, 29, 36, 44, 53, 64, 76, 91, 108},
}
