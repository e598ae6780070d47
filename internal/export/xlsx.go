// Package export writes decision records to spreadsheet files.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/decision-cli/internal/model"
)

// Sheet names, in workbook order.
const (
	SheetSummary   = "Summary"
	SheetOptions   = "Options"
	SheetCriteria  = "Criteria"
	SheetQuestions = "Questions"
)

// SaveXLSX writes rec to a workbook at path.
func SaveXLSX(path string, rec *model.DecisionRecord) error {
	f, err := Workbook(rec)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Save(path), "xlsx: save")
}

// WriteXLSX writes rec as a workbook to w.
func WriteXLSX(w io.Writer, rec *model.DecisionRecord) error {
	f, err := Workbook(rec)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "xlsx: write")
}

// Workbook builds the four-sheet workbook for rec.
func Workbook(rec *model.DecisionRecord) (*xlsx.File, error) {
	if rec == nil {
		return nil, eris.New("xlsx: nil decision")
	}
	f := xlsx.NewFile()

	builders := []struct {
		name  string
		build func(*xlsx.Sheet, *model.DecisionRecord)
	}{
		{SheetSummary, summarySheet},
		{SheetOptions, optionsSheet},
		{SheetCriteria, criteriaSheet},
		{SheetQuestions, questionsSheet},
	}
	for _, b := range builders {
		sheet, err := f.AddSheet(b.name)
		if err != nil {
			return nil, eris.Wrapf(err, "xlsx: add sheet %s", b.name)
		}
		b.build(sheet, rec)
	}
	return f, nil
}

func addStrings(sheet *xlsx.Sheet, values ...string) *xlsx.Row {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
	return row
}

func summarySheet(sheet *xlsx.Sheet, rec *model.DecisionRecord) {
	top, score := rec.TopOption()
	addStrings(sheet, "Decision", rec.ID)
	addStrings(sheet, "Created", rec.CreatedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	addStrings(sheet, "Title", rec.Framework.Title)
	addStrings(sheet, "Type", rec.Framework.DecisionType)
	addStrings(sheet, "Scenario", rec.Scenario.Text)
	addStrings(sheet, "Depth", string(rec.Scenario.Depth))
	addStrings(sheet, "Primary choice", rec.Result.PrimaryChoice)
	addStrings(sheet, "Reasoning", rec.Result.Recommendation)
	row := addStrings(sheet, "Top option", top)
	row.AddCell().SetFloat(score)
	addStrings(sheet, "Alternatives", strings.Join(rec.Result.Alternatives, "\n"))
	addStrings(sheet, "Red flags", strings.Join(rec.Result.RedFlags, "\n"))
	if len(rec.Result.CriticalFactors) > 0 || rec.Result.RobustChoice != "" {
		addStrings(sheet, "Critical factors", strings.Join(rec.Result.CriticalFactors, ", "))
		addStrings(sheet, "Robust choice", rec.Result.RobustChoice)
	}
	if len(rec.Framework.ContextFactors) > 0 {
		addStrings(sheet, "Context factors", strings.Join(rec.Framework.ContextFactors, ", "))
	}
}

func optionsSheet(sheet *xlsx.Sheet, rec *model.DecisionRecord) {
	addStrings(sheet, "Rank", "Option", "Score", "Confidence", "Suggested", "Strengths", "Weaknesses", "Description")
	for i, o := range rec.Result.Options {
		row := sheet.AddRow()
		row.AddCell().SetInt(i + 1)
		row.AddCell().SetString(o.Name)
		row.AddCell().SetFloat(o.Score)
		row.AddCell().SetString(string(o.Confidence))
		row.AddCell().SetBool(o.Inferred)
		row.AddCell().SetString(strings.Join(o.Pros, "\n"))
		row.AddCell().SetString(strings.Join(o.Cons, "\n"))
		row.AddCell().SetString(o.Description)
	}
}

// criteriaSheet lays out one row per criterion with a score column for each
// option in ranked order.
func criteriaSheet(sheet *xlsx.Sheet, rec *model.DecisionRecord) {
	header := []string{"Criterion", "Category", "Weight %"}
	for _, o := range rec.Result.Options {
		header = append(header, o.Name)
	}
	addStrings(sheet, header...)

	for _, c := range rec.Result.Criteria {
		row := addStrings(sheet, c.Name, c.Category)
		row.AddCell().SetInt(c.WeightPercent)
		for _, o := range rec.Result.Options {
			cell := row.AddCell()
			if s, ok := c.Scores[o.Name]; ok {
				cell.SetFloat(s)
			}
		}
	}
}

func questionsSheet(sheet *xlsx.Sheet, rec *model.DecisionRecord) {
	addStrings(sheet, "#", "Type", "Question", "Criterion", "Answer")
	for i, q := range rec.Framework.Questions {
		answer := ""
		if v, ok := rec.Responses[i]; ok {
			answer = formatAnswer(q, v)
		}
		qtype := ""
		if q.Spec != nil {
			qtype = string(q.Spec.Type())
		}
		row := sheet.AddRow()
		row.AddCell().SetInt(i + 1)
		row.AddCell().SetString(qtype)
		row.AddCell().SetString(q.Text)
		row.AddCell().SetString(q.CriteriaLink)
		row.AddCell().SetString(answer)
	}
}

// formatAnswer renders a wire answer for display. Records loaded from the
// store carry JSON-decoded values, so lists arrive as []any and numbers as
// float64.
func formatAnswer(q model.Question, v any) string {
	switch a := v.(type) {
	case nil:
		return ""
	case bool:
		if spec, ok := q.Spec.(model.BooleanSpec); ok {
			if a {
				return spec.Labels[1]
			}
			return spec.Labels[0]
		}
		return fmt.Sprint(a)
	case float64:
		return fmt.Sprintf("%g", a)
	case []string:
		return strings.Join(a, " > ")
	case []any:
		parts := make([]string, len(a))
		for i, p := range a {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, " > ")
	default:
		return fmt.Sprint(a)
	}
}
