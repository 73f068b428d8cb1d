package catalog

import (
	"github.com/nvandessel/fliplot/internal/constants"
	"github.com/nvandessel/fliplot/internal/figure"
)

// Built-in script names.
const (
	RomanKomac            = "roman-komac"
	JohnsonCounter        = "johnson-counter"
	CoupledRepressilators = "coupled-repressilators"
)

// Builtin returns the three built-in scripts. Each call returns fresh values.
func Builtin() []Script {
	return []Script{
		romanKomac(),
		johnsonCounter(),
		coupledRepressilators(),
	}
}

// coupledRepressilators plots the D flip-flop built from repressilators coupled
// by quorum sensing: one single-line chart per quantity.
func coupledRepressilators() Script {
	single := func(input, y, output string) figure.Spec {
		return figure.Spec{
			Title:  constants.DefaultFigureTitle,
			Input:  input,
			Output: output,
			Traces: []figure.Trace{{Name: y, X: constants.TimeColumn, Y: y}},
		}
	}
	return Script{
		Name:        CoupledRepressilators,
		Description: "Coupled repressilators: internal AI, Q/Qc chemical fields and lacI mRNA",
		Figures: []figure.Spec{
			single("AI_internal_ALL.csv", "internal_AI", "ai_internal_result.html"),
			single("chemicalFields.csv", "qFieldAvg", "q_chem_field_result.html"),
			single("chemicalFields.csv", "qcFieldAvg", "qc_chem_field_result.html"),
			single("lacI_ALL.csv", "lacI_mRNA", "lacI_result.html"),
		},
	}
}

// proteinGrid is the 2x2 activatory/repressory/Q/Qc layout.
// columns holds the four y columns in that order.
func proteinGrid(input, output string, columns [4]string) figure.Spec {
	names := [4]string{"activatory proteins", "repressory proteins", "Q proteins", "Qc proteins"}
	traces := make([]figure.Trace, 4)
	for i := range traces {
		traces[i] = figure.Trace{
			Name: names[i],
			X:    constants.TimeColumn,
			Y:    columns[i],
			Row:  i/2 + 1,
			Col:  i%2 + 1,
		}
	}
	return figure.Spec{Input: input, Output: output, Rows: 2, Cols: 2, Traces: traces}
}

// johnsonCounter plots the three synchronous flip-flops of the Johnson counter
// plus a longer run of the third.
func johnsonCounter() Script {
	cols := [4]string{"activatory proteins(h)", "repressory proteins(i)", "Q proteins(q)", "Qc proteins(qc)"}
	return Script{
		Name:        JohnsonCounter,
		Description: "Johnson counter: per flip-flop protein averages in 2x2 grids",
		Figures: []figure.Spec{
			proteinGrid("flip_flop1_concentrations_average.csv", "concentrations_flip_flop1.html", cols),
			proteinGrid("flip_flop2_concentrations_average.csv", "concentrations_flip_flop2.html", cols),
			proteinGrid("flip_flop3_concentrations_average.csv", "concentrations_flip_flop3.html", cols),
			proteinGrid("flip_flop3_concentrations_average_longer.csv", "concentrations_flip_flop3_longer.html", cols),
		},
	}
}

// romanKomac plots the protein averages of the Roman-Komac D flip-flop.
// The second run has no activatory column and uses a 1x3 grid.
func romanKomac() Script {
	cols := [4]string{"# activatory proteins", "# repressory proteins", "# Q proteins", "# Qc proteins"}
	return Script{
		Name:        RomanKomac,
		Description: "Roman-Komac D flip-flop: protein averages of two runs",
		Figures: []figure.Spec{
			proteinGrid("Concentrations_average_1.csv", "concentrations_result_1.html", cols),
			{
				Input:  "Concentrations_average_2.csv",
				Output: "concentrations_result_2.html",
				Rows:   1,
				Cols:   3,
				Traces: []figure.Trace{
					{Name: "repressory proteins", X: constants.TimeColumn, Y: cols[1], Row: 1, Col: 1},
					{Name: "Q proteins", X: constants.TimeColumn, Y: cols[2], Row: 1, Col: 2},
					{Name: "Qc proteins", X: constants.TimeColumn, Y: cols[3], Row: 1, Col: 3},
				},
			},
		},
	}
}
