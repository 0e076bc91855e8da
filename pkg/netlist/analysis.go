package netlist

import (
	"fmt"
	"strconv"
	"strings"

	"spicecad/pkg/util"
)

type AnalysisType int

const (
	AnalysisOP AnalysisType = iota
	AnalysisTran
	AnalysisDC
	AnalysisAC
	AnalysisNoise
)

func (t AnalysisType) String() string {
	switch t {
	case AnalysisOP:
		return "DC Operating Point"
	case AnalysisTran:
		return "Transient"
	case AnalysisDC:
		return "DC Sweep"
	case AnalysisAC:
		return "AC Sweep"
	case AnalysisNoise:
		return "Noise"
	default:
		return "Unknown"
	}
}

type TranParam struct {
	Step  float64
	Stop  float64
	Start float64
}

type DCParam struct {
	Source string
	Start  float64
	Stop   float64
	Step   float64
}

type ACParam struct {
	Sweep  string // DEC, OCT, LIN
	Points int
	FStart float64
	FStop  float64
}

type NoiseParam struct {
	Output string // output node name
	Source string // input source name
	Sweep  string
	Points int
	FStart float64
	FStop  float64
}

// Analysis is the single active analysis directive plus any .meas lines.
type Analysis struct {
	Type  AnalysisType
	Tran  TranParam
	DC    DCParam
	AC    ACParam
	Noise NoiseParam
	Meas  []string
}

// ApplyDirective parses one dot line into the analysis. It returns true
// when the line was an analysis or .meas directive. Later directives
// overwrite earlier ones, last wins.
func ApplyDirective(an *Analysis, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	var err error
	switch strings.ToLower(fields[0]) {
	case ".op":
		an.Type = AnalysisOP

	case ".tran":
		if len(fields) < 3 {
			return true, fmt.Errorf("insufficient tran parameters, need tstep and tstop")
		}
		an.Type = AnalysisTran
		an.Tran = TranParam{}
		if an.Tran.Step, err = util.ParseValue(fields[1]); err != nil {
			return true, fmt.Errorf("invalid tstep: %v", err)
		}
		if an.Tran.Stop, err = util.ParseValue(fields[2]); err != nil {
			return true, fmt.Errorf("invalid tstop: %v", err)
		}
		if len(fields) > 3 && strings.ToLower(fields[3]) != "uic" {
			if an.Tran.Start, err = util.ParseValue(fields[3]); err != nil {
				return true, fmt.Errorf("invalid tstart: %v", err)
			}
		}

	case ".dc":
		if len(fields) < 5 {
			return true, fmt.Errorf("insufficient DC sweep parameters")
		}
		an.Type = AnalysisDC
		an.DC = DCParam{Source: fields[1]}
		if an.DC.Start, err = util.ParseValue(fields[2]); err != nil {
			return true, fmt.Errorf("invalid start value: %v", err)
		}
		if an.DC.Stop, err = util.ParseValue(fields[3]); err != nil {
			return true, fmt.Errorf("invalid stop value: %v", err)
		}
		if an.DC.Step, err = util.ParseValue(fields[4]); err != nil {
			return true, fmt.Errorf("invalid increment value: %v", err)
		}

	case ".ac":
		if len(fields) < 5 {
			return true, fmt.Errorf("insufficient AC parameters, need sweep type, points, fstart and fstop")
		}
		an.Type = AnalysisAC
		an.AC = ACParam{Sweep: strings.ToUpper(fields[1])}
		if an.AC.Sweep != "DEC" && an.AC.Sweep != "OCT" && an.AC.Sweep != "LIN" {
			return true, fmt.Errorf("invalid sweep type: %s", an.AC.Sweep)
		}
		if an.AC.Points, err = strconv.Atoi(fields[2]); err != nil {
			return true, fmt.Errorf("invalid points number: %v", err)
		}
		if an.AC.FStart, err = util.ParseValue(fields[3]); err != nil {
			return true, fmt.Errorf("invalid fstart: %v", err)
		}
		if an.AC.FStop, err = util.ParseValue(fields[4]); err != nil {
			return true, fmt.Errorf("invalid fstop: %v", err)
		}

	case ".noise":
		// .noise V(out) <source> <sweep> <points> <fstart> <fstop>
		if len(fields) < 7 {
			return true, fmt.Errorf("insufficient noise parameters")
		}
		an.Type = AnalysisNoise
		out := fields[1]
		out = strings.TrimPrefix(strings.TrimPrefix(out, "V("), "v(")
		out = strings.TrimSuffix(out, ")")
		an.Noise = NoiseParam{Output: out, Source: fields[2], Sweep: strings.ToUpper(fields[3])}
		if an.Noise.Points, err = strconv.Atoi(fields[4]); err != nil {
			return true, fmt.Errorf("invalid noise points: %v", err)
		}
		if an.Noise.FStart, err = util.ParseValue(fields[5]); err != nil {
			return true, fmt.Errorf("invalid noise fstart: %v", err)
		}
		if an.Noise.FStop, err = util.ParseValue(fields[6]); err != nil {
			return true, fmt.Errorf("invalid noise fstop: %v", err)
		}

	case ".meas", ".measure":
		an.Meas = append(an.Meas, line)

	default:
		return false, nil
	}

	return true, nil
}

// Directives renders the analysis back as netlist control lines.
func (an *Analysis) Directives() []string {
	var lines []string
	switch an.Type {
	case AnalysisOP:
		lines = append(lines, ".op")
	case AnalysisTran:
		l := fmt.Sprintf(".tran %s %s", util.FormatValue(an.Tran.Step), util.FormatValue(an.Tran.Stop))
		if an.Tran.Start != 0 {
			l += " " + util.FormatValue(an.Tran.Start)
		}
		lines = append(lines, l)
	case AnalysisDC:
		lines = append(lines, fmt.Sprintf(".dc %s %s %s %s", an.DC.Source,
			util.FormatValue(an.DC.Start), util.FormatValue(an.DC.Stop), util.FormatValue(an.DC.Step)))
	case AnalysisAC:
		lines = append(lines, fmt.Sprintf(".ac %s %d %s %s", an.AC.Sweep, an.AC.Points,
			util.FormatValue(an.AC.FStart), util.FormatValue(an.AC.FStop)))
	case AnalysisNoise:
		lines = append(lines,
			fmt.Sprintf(".noise V(%s) %s %s %d %s %s", an.Noise.Output, an.Noise.Source,
				an.Noise.Sweep, an.Noise.Points,
				util.FormatValue(an.Noise.FStart), util.FormatValue(an.Noise.FStop)),
			".control",
			"run",
			"setplot noise1",
			"print onoise_spectrum inoise_spectrum",
			".endc")
	}
	lines = append(lines, an.Meas...)
	return lines
}
