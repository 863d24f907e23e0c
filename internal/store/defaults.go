package store

// canonicalDefaults is the full metric table with baseline values observed
// for a reference institution. Every code the scoring scheme carries appears
// here; Validate treats this as the required-field list and Reset restores
// it wholesale.
var canonicalDefaults = map[string]float64{
	// Publication: international journals by quartile, citations, national
	// journal ranks, Google Scholar, books.
	"AI1": 0.092, "AI2": 0.076, "AI3": 0.139, "AI4": 0.034, "AI5": 0.034,
	"AI6": 0.151, "AI7": 343.01, "AI8": 0.349,
	"AN1": 0.021, "AN2": 0.202, "AN3": 0.441, "AN4": 2.366, "AN5": 2.294, "AN6": 0.122,
	"AN7": 1.483, "AN8": 0.013, "AN9": 0.0, "AN10": 0.0,
	"DGS1": 22.092, "DGS2": 2.426, "DGS3": 9.828,
	"B1": 0.202, "B2": 0.622, "B3": 0.025,

	// Research.
	"P1": 0.0, "P2": 0.0, "P3": 18.0, "P4": 7.0, "P5": 486.0, "P6": 10.0, "P7": 2523.96,

	// Community service.
	"PM1": 0.0, "PM2": 0.0, "PM3": 6.0, "PM4": 3.0, "PM5": 476.0, "PM6": 13.0, "PM7": 793.35,

	// Intellectual property.
	"KI1": 0.0, "KI2": 0.0, "KI3": 0.004, "KI4": 0.0, "KI5": 0.0, "KI6": 0.0,
	"KI7": 0.004, "KI8": 0.143, "KI9": 6.0, "KI10": 0.0,

	// Human resources: staff ratios and reviewers.
	"R1": 0.0, "R2": 0.0, "R3": 0.0, "DOS1": 0.004, "DOS2": 0.054, "DOS3": 0.43,
	"DOS4": 0.318, "DOS5": 0.193, "REV1": 0.0,

	// Institutional: study-program and journal accreditation.
	"APS1": 0.0, "APS2": 0.833, "APS3": 0.167, "APS4": 0.0,
	"JO1": 0.0, "JO2": 0.0, "JO3": 0.0, "JO4": 4.0, "JO5": 9.0, "JO6": 1.0,
}

// Defaults returns a copy of the canonical defaults table.
func Defaults() map[string]float64 {
	out := make(map[string]float64, len(canonicalDefaults))
	for code, f := range canonicalDefaults {
		out[code] = f
	}
	return out
}
