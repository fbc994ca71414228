package log

import (
	"github.com/pterm/pterm"
)

func GetPtermErrorStyle() *pterm.Style {
	return &pterm.Style{pterm.FgRed, pterm.Bold}
}

func GetPtermSuccessStyle() *pterm.Style {
	return &pterm.Style{pterm.FgGreen}
}
