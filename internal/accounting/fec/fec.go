// Package fec produces the Fichier des Écritures Comptables, the export
// every French business must hand to the tax administration on request.
// Layout follows article A47 A-1 du LPF: 18 pipe-separated columns, one row
// per posted journal line.
package fec

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Header is the mandatory first row of the export.
const Header = "JournalCode|JournalLib|EcritureNum|EcritureDate|CompteNum|CompteLib|CompAuxNum|CompAuxLib|PieceRef|PieceDate|EcritureLib|Debit|Credit|EcritureLet|DateLet|ValidDate|Montantdevise|Idevise"

// ColumnCount is the number of fields in every row.
const ColumnCount = 18

// Row is one line of the export. Lettering and foreign currency columns stay
// empty: the ledger carries EUR amounts only and no lettrage.
type Row struct {
	JournalCode  string
	JournalLib   string
	EcritureNum  string
	EcritureDate time.Time
	CompteNum    string
	CompteLib    string
	PieceRef     string
	PieceDate    time.Time
	EcritureLib  string
	Debit        float64
	Credit       float64
	ValidDate    time.Time
}

// Fields renders the row as its 18 column values. Dates use YYYYMMDD and
// amounts the French comma decimal separator.
func (r Row) Fields() []string {
	return []string{
		r.JournalCode,
		r.JournalLib,
		r.EcritureNum,
		formatDate(r.EcritureDate),
		r.CompteNum,
		r.CompteLib,
		"", // CompAuxNum
		"", // CompAuxLib
		r.PieceRef,
		formatDate(r.PieceDate),
		r.EcritureLib,
		formatAmount(r.Debit),
		formatAmount(r.Credit),
		"", // EcritureLet
		"", // DateLet
		formatDate(r.ValidDate),
		"", // Montantdevise
		"", // Idevise
	}
}

// Filename builds the regulatory name: SIREN, the literal FEC, and the
// fiscal year end date.
func Filename(siren string, fiscalYearEnd time.Time) string {
	return siren + "FEC" + fiscalYearEnd.Format("20060102") + ".txt"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("20060102")
}

func formatAmount(v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2)
	return strings.ReplaceAll(s, ".", ",")
}
